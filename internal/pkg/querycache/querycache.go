// Package querycache provides a small in-memory LRU cache for resolved backend
// query results. Cached entries are attributable to the authenticated identity
// that fetched them, so the session layer purges the cache in bulk on logout.
package querycache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the number of query results retained before eviction.
const DefaultSize = 128

// Cache wraps an LRU cache keyed by request parameters.
type Cache struct {
	entries *lru.Cache[string, any]
}

// New creates a Cache holding at most size entries.
func New(size int) (*Cache, error) {
	entries, err := lru.New[string, any](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Get returns the cached value for key, if present.
func (c *Cache) Get(key string) (any, bool) {
	return c.entries.Get(key)
}

// Set stores value under key, evicting the least recently used entry if full.
func (c *Cache) Set(key string, value any) {
	c.entries.Add(key, value)
}

// Purge drops every cached entry. Invoked on logout: results fetched under a
// cleared session must never be served to the next identity.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}
