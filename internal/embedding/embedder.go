// Package embedding 文本向量化：把任意文本映射为定长浮点向量
package embedding

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyEmbedding 向量服务返回空结果
var ErrEmptyEmbedding = errors.New("empty embedding result")

// Embedder 向量服务接口，相同输入必须得到相同向量
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder 支持批量生成的向量服务
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedAll 按输入顺序生成全部向量，任一失败则整体失败
// 支持批量接口时一次调用，否则以 parallelism 为上限并发调用 Embed
func EmbedAll(ctx context.Context, e Embedder, texts []string, parallelism int) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if be, ok := e.(BatchEmbedder); ok {
		vectors, err := be.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("batch returned %d vectors for %d texts", len(vectors), len(texts))
		}
		return vectors, nil
	}

	if parallelism <= 0 {
		parallelism = 1
	}

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, text := range texts {
		g.Go(func() error {
			v, err := e.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embed text %d: %w", i, err)
			}
			vectors[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
