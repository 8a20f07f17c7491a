package di

import (
	"context"
	"sync"
	"time"
)

// InMemoryCache holds assembled graph views between writes. Entries
// expire lazily: reads ignore stale entries and writes prune them, so
// no background goroutine is needed.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewInMemoryCache creates an empty cache
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached value when present and still fresh
func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value that expires after ttl seconds
func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, ttl int) error {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, k)
		}
	}

	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: now.Add(time.Duration(ttl) * time.Second),
	}
	return nil
}

// Delete drops a single entry
func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear drops every entry
func (c *InMemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	return nil
}
