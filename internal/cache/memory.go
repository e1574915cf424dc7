// internal/cache/memory.go
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryCache is a bounded in-process LRU cache. The default backend when no
// Redis is configured; capacity bounds memory instead of growing per request.
type MemoryCache struct {
	entries *lru.Cache[string, []byte]
}

// NewMemoryCache creates a memory cache holding at most capacity entries.
func NewMemoryCache(capacity int) (*MemoryCache, error) {
	entries, err := lru.New[string, []byte](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &MemoryCache{entries: entries}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, found := c.entries.Get(key)
	return value, found, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.entries.Add(key, value)
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.entries.Purge()
	return nil
}

// Len reports the current number of cached entries.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}
