package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// SearchCache 定长 LRU 缓存，ttl <= 0 时条目不过期
type SearchCache[T any] struct {
	storage *lru.Cache[string, CacheItem[T]]
	ttl     time.Duration
}

// NewSearchCache size 是最大缓存条数，ttl 是数据有效期
func NewSearchCache[T any](size int, ttl time.Duration) *SearchCache[T] {
	if size <= 0 {
		size = 1
	}
	// lru.New 是线程安全的，size > 0 时不会返回错误
	c, _ := lru.New[string, CacheItem[T]](size)
	return &SearchCache[T]{
		storage: c,
		ttl:     ttl,
	}
}

// Set LRU 中 Add 会自动处理更新
func (c *SearchCache[T]) Set(key string, value T) {
	item := CacheItem[T]{Value: value}
	if c.ttl > 0 {
		item.ExpiredAt = time.Now().Add(c.ttl)
	}
	c.storage.Add(key, item)
}

// Get 带过期检查
func (c *SearchCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}

	if !item.ExpiredAt.IsZero() && time.Now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}

	return item.Value, true
}

func (c *SearchCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

func (c *SearchCache[T]) Clear() {
	c.storage.Purge()
}

func (c *SearchCache[T]) Len() int {
	return c.storage.Len()
}

// ResultCache 基于 go-cache 的带过期结果缓存
type ResultCache[T any] struct {
	store *cache.Cache
}

// NewResultCache 默认过期时间 ttl，清理间隔为 2*ttl
func NewResultCache[T any](ttl time.Duration) *ResultCache[T] {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResultCache[T]{store: cache.New(ttl, 2*ttl)}
}

func (c *ResultCache[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func (c *ResultCache[T]) Set(key string, value T) {
	c.store.SetDefault(key, value)
}

// Flush 清空所有缓存
func (c *ResultCache[T]) Flush() {
	c.store.Flush()
}

func (c *ResultCache[T]) Len() int {
	return c.store.ItemCount()
}
