package cache

import (
	"time"

	"github.com/ppiankov/zuordnung/internal/model"
)

// LayeredCache fronts a disk cache with a memory cache. Reads prefer
// memory; a disk hit is promoted so repeated parses of the same
// document decode its entry at most once per process.
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewLayeredCache creates a layered cache over the given disk directory
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get retrieves a parse result, checking memory before disk
func (c *LayeredCache) Get(key string) (*model.ParseResult, bool) {
	if result, found := c.memory.Get(key); found {
		return result, true
	}

	if result, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, result, 0)
		return result, true
	}

	return nil, false
}

// Set stores a parse result in both layers
func (c *LayeredCache) Set(key string, result *model.ParseResult, ttl time.Duration) error {
	if err := c.memory.Set(key, result, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, result, ttl)
}

// Delete removes a parse result from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear removes all entries from both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
