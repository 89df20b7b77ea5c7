package cache

import (
	"sync"
)

// TokenCache caches token lists keyed by model and text.
type TokenCache interface {
	// Get retrieves a token list from the cache.
	Get(model, text string) ([]string, bool)
	// Put stores a token list in the cache.
	Put(model, text string, tokens []string)
	// Size returns the number of items in the cache.
	Size() int
}

type key struct {
	model string
	text  string
}

// MapCache is a simple in-memory implementation of TokenCache.
type MapCache struct {
	data map[key][]string
	mu   sync.RWMutex
}

func NewMapCache() *MapCache {
	return &MapCache{
		data: make(map[key][]string),
	}
}

func (c *MapCache) Get(model, text string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Return copy to avoid modification of cached value
	if v, ok := c.data[key{model, text}]; ok {
		return clone(v), true
	}
	return nil, false
}

func (c *MapCache) Put(model, text string, tokens []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key{model, text}] = clone(tokens)
}

func (c *MapCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func clone(tokens []string) []string {
	dst := make([]string, len(tokens))
	copy(dst, tokens)
	return dst
}
