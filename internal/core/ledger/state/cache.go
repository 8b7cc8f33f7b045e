package state

import (
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheEntries is used when no cache size is configured
const DefaultCacheEntries = 4096

// entryCache keeps recently read entries in memory. Missing keys are never
// cached, so an insert is always seen by the next read.
type entryCache struct {
	entries *lru.Cache[[32]byte, []byte]

	// Metrics
	hits   atomic.Uint64
	misses atomic.Uint64
}

func newEntryCache(size int) (*entryCache, error) {
	if size <= 0 {
		size = DefaultCacheEntries
	}
	entries, err := lru.New[[32]byte, []byte](size)
	if err != nil {
		return nil, err
	}
	return &entryCache{entries: entries}, nil
}

func (c *entryCache) get(key [32]byte) ([]byte, bool) {
	data, found := c.entries.Get(key)
	if found {
		c.hits.Add(1)
		return data, true
	}
	c.misses.Add(1)
	return nil, false
}

func (c *entryCache) put(key [32]byte, data []byte) {
	c.entries.Add(key, data)
}

func (c *entryCache) remove(key [32]byte) {
	c.entries.Remove(key)
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Size   int
	Hits   uint64
	Misses uint64
}

func (c *entryCache) stats() CacheStats {
	return CacheStats{
		Size:   c.entries.Len(),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}
