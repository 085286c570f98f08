package template

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of parsed patterns kept in a Cache.
const DefaultCacheSize = 1024

// Cache memoizes Parse by exact pattern string.
//
// Parsing is a pure function of the pattern, so eviction only costs a
// re-parse. A Cache is safe for concurrent use.
type Cache struct {
	cache *lru.Cache[string, *Template]
}

// NewCache creates a Cache holding at most size templates.
// A non-positive size selects DefaultCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, *Template](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Cache{cache: c}
}

// Parse returns the cached Template for pattern, parsing it on a miss.
// Malformed patterns are not cached.
func (c *Cache) Parse(pattern string) (*Template, error) {
	if t, ok := c.cache.Get(pattern); ok {
		return t, nil
	}
	t, err := Parse(pattern)
	if err != nil {
		return nil, err
	}
	c.cache.Add(pattern, t)
	return t, nil
}

// Len returns the number of cached templates.
func (c *Cache) Len() int {
	return c.cache.Len()
}
