package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/zuordnung/internal/model"
)

// MemoryCache keeps parse results in process memory with TTL expiry.
// Results are stored as-is without serialization; callers must treat a
// returned result as read-only.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a parse result from the cache
func (c *MemoryCache) Get(key string) (*model.ParseResult, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	result, ok := val.(*model.ParseResult)
	if !ok {
		c.cache.Delete(key)
		return nil, false
	}
	return result, true
}

// Set stores a parse result with the given TTL
func (c *MemoryCache) Set(key string, result *model.ParseResult, ttl time.Duration) error {
	c.cache.Set(key, result, ttl)
	return nil
}

// Delete removes a parse result from the cache
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes all entries from the cache
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}
