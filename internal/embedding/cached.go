package embedding

import (
	"context"

	"github.com/user/cinerag/internal/utils"
	"golang.org/x/sync/singleflight"
)

// batchParallelism 底层服务不支持批量时的并发上限
const batchParallelism = 4

// CachedEmbedder 为任意向量服务加 LRU 缓存
// 同一文本的并发请求经 singleflight 合并为一次调用
type CachedEmbedder struct {
	inner Embedder
	cache *utils.SearchCache[[]float32]
	sf    singleflight.Group
}

func NewCachedEmbedder(inner Embedder, size int) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		// 向量是确定性的，不设过期
		cache: utils.NewSearchCache[[]float32](size, 0),
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return clone(v), nil
	}

	// 合并后的调用不受单个调用方取消的影响，调用方自己取消时直接返回
	flightCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(text, func() (interface{}, error) {
		v, err := c.inner.Embed(flightCtx, text)
		if err != nil {
			return nil, err
		}
		c.cache.Set(text, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return clone(res.Val.([]float32)), nil
	}
}

// EmbedBatch 仅对未命中的文本调用底层服务
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missIdx []int
	var misses []string
	for i, text := range texts {
		if v, ok := c.cache.Get(text); ok {
			vectors[i] = clone(v)
			continue
		}
		missIdx = append(missIdx, i)
		misses = append(misses, text)
	}
	if len(misses) == 0 {
		return vectors, nil
	}

	fetched, err := EmbedAll(ctx, c.inner, misses, batchParallelism)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		c.cache.Set(misses[j], fetched[j])
		vectors[i] = clone(fetched[j])
	}
	return vectors, nil
}

// Len 当前缓存条数
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

func clone(v []float32) []float32 {
	return append([]float32(nil), v...)
}
