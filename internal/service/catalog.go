package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/cinerag/internal/embedding"
	"github.com/user/cinerag/internal/model"
)

// ErrDimensionMismatch 新向量与目录已有向量维度不同
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// seedParallelism 批量入库时向量调用的并发上限
const seedParallelism = 4

// Catalog 电影目录：只追加，不修改、不删除
type Catalog struct {
	embedder embedding.Embedder
	entries  []model.CatalogEntry
}

// NewCatalog 创建空目录
func NewCatalog(embedder embedding.Embedder) *Catalog {
	return &Catalog{
		embedder: embedder,
		entries:  []model.CatalogEntry{},
	}
}

// Add 生成向量后追加条目；向量生成失败时目录保持不变
func (c *Catalog) Add(ctx context.Context, movie model.Movie) (model.CatalogEntry, error) {
	vec, err := c.embedder.Embed(ctx, movie.EmbeddingText())
	if err != nil {
		return model.CatalogEntry{}, fmt.Errorf("embed %q: %w", movie.Title, err)
	}
	if dims := c.Dimensions(); dims > 0 && len(vec) != dims {
		return model.CatalogEntry{}, fmt.Errorf("%w: %q has %d dimensions, catalog has %d",
			ErrDimensionMismatch, movie.Title, len(vec), dims)
	}

	entry := model.CatalogEntry{Movie: movie, Embedding: vec}
	c.entries = append(c.entries, entry)
	return entry, nil
}

// AddAll 批量追加，全部向量生成成功后才写入
func (c *Catalog) AddAll(ctx context.Context, movies []model.Movie) error {
	texts := make([]string, len(movies))
	for i, m := range movies {
		texts[i] = m.EmbeddingText()
	}

	vectors, err := embedding.EmbedAll(ctx, c.embedder, texts, seedParallelism)
	if err != nil {
		return fmt.Errorf("embed catalog: %w", err)
	}

	dims := c.Dimensions()
	for i, v := range vectors {
		if dims == 0 {
			dims = len(v)
		}
		if len(v) != dims {
			return fmt.Errorf("%w: %q has %d dimensions, expected %d",
				ErrDimensionMismatch, movies[i].Title, len(v), dims)
		}
	}

	for i, m := range movies {
		c.entries = append(c.entries, model.CatalogEntry{Movie: m, Embedding: vectors[i]})
	}
	return nil
}

// All 返回只读副本，保持入库顺序
func (c *Catalog) All() []model.CatalogEntry {
	out := make([]model.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Dimensions 目录向量维度，空目录为 0
func (c *Catalog) Dimensions() int {
	if len(c.entries) == 0 {
		return 0
	}
	return len(c.entries[0].Embedding)
}

// Uniform 所有向量维度一致且非空
func (c *Catalog) Uniform() bool {
	dims := c.Dimensions()
	if dims == 0 {
		return false
	}
	for _, e := range c.entries {
		if len(e.Embedding) != dims {
			return false
		}
	}
	return true
}

// Reembed 用当前向量服务重新生成全部向量，全部成功后才替换
func (c *Catalog) Reembed(ctx context.Context) error {
	movies := make([]model.Movie, len(c.entries))
	for i, e := range c.entries {
		movies[i] = e.Movie
	}

	fresh := NewCatalog(c.embedder)
	if err := fresh.AddAll(ctx, movies); err != nil {
		return err
	}
	c.entries = fresh.entries
	return nil
}

// GenresOf 汇总所有同名电影的类型，按出现顺序去重
func (c *Catalog) GenresOf(title string) []string {
	var genres []string
	for _, e := range c.entries {
		if e.Movie.Title != title {
			continue
		}
		for _, g := range e.Movie.Genres() {
			if !contains(genres, g) {
				genres = append(genres, g)
			}
		}
	}
	return genres
}

// Contains 目录中是否存在该标题
func (c *Catalog) Contains(title string) bool {
	for _, e := range c.entries {
		if e.Movie.Title == title {
			return true
		}
	}
	return false
}

// Restore 用快照中的条目替换当前内容
func (c *Catalog) Restore(entries []model.CatalogEntry) {
	c.entries = make([]model.CatalogEntry, len(entries))
	copy(c.entries, entries)
}

// contains 检查字符串是否在切片中
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
