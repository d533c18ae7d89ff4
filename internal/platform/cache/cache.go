// Package cache implements generation.ResultCache with dgraph-io/ristretto as
// an in-process cache.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/phrazzld/questiongen/internal/domain"
	"github.com/phrazzld/questiongen/internal/generation"
)

var _ generation.ResultCache = (*Cache)(nil)

// Cache wraps a ristretto cache of generation results.
type Cache struct {
	c   *ristretto.Cache[string, *domain.GenerationResult]
	ttl time.Duration
}

// New creates a ristretto-backed cache. maxCostBytes bounds the approximate
// size of cached results; ttl of zero keeps entries until evicted.
func New(maxCostBytes int64, ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *domain.GenerationResult]{
		NumCounters: max(maxCostBytes/100*10, 1000), // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, ttl: ttl}, nil
}

// Get returns a copy of the cached result for key.
func (c *Cache) Get(key string) (*domain.GenerationResult, bool) {
	val, found := c.c.Get(key)
	if !found {
		return nil, false
	}
	return val.Clone(), true
}

// Set stores a copy of result under key. Ristretto admits writes
// asynchronously and may drop them under contention.
func (c *Cache) Set(key string, result *domain.GenerationResult) {
	if result == nil {
		return
	}
	c.c.SetWithTTL(key, result.Clone(), cost(result), c.ttl)
}

// Wait blocks until buffered writes have been applied.
func (c *Cache) Wait() {
	c.c.Wait()
}

// Close shuts down the cache and releases resources.
func (c *Cache) Close() {
	c.c.Close()
}

func cost(r *domain.GenerationResult) int64 {
	var n int64 = 64
	for _, q := range r.Questions {
		n += int64(len(q.Question) + len(q.Answer) + len(q.Topic) + len(q.Explanation) + len(q.Difficulty))
	}
	return n
}
