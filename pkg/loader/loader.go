package loader

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FileLoader fetches the raw bytes behind a path. Implementations may read
// from disk, object storage or other sources.
type FileLoader interface {
	Load(ctx context.Context, path string) ([]byte, error)
}

// Evicter is implemented by loaders that cache. Callers that know a file
// will not be read again should evict it.
type Evicter interface {
	Evict(path string)
}

// Cache memoizes loads by key. Concurrent loads of the same key share one
// fetch.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
	group   singleflight.Group
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

func (c *Cache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.entries[key]
	return b, ok
}

// Get returns the cached bytes for key or calls fetch once to fill them.
// Failed fetches are not cached.
func (c *Cache) Get(key string, fetch func() ([]byte, error)) ([]byte, error) {
	if cached, ok := c.get(key); ok {
		return cached, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		if cached, ok := c.get(key); ok {
			return cached, nil
		}
		b, err := fetch()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = b
		c.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Evict drops key from the cache.
func (c *Cache) Evict(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
