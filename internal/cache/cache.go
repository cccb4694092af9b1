// Package cache provides thread-safe generic caching for the content pipeline.
package cache

import (
	"sync"
	"time"
)

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

func (c *Cache[K, V]) SetTo(items map[K]V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

// Expiring wraps a value with the instant it was stored so callers can apply
// a TTL at read time.
type Expiring[V any] struct {
	Value    V
	StoredAt time.Time
}

// Fresh reports whether the entry is younger than ttl. A non-positive ttl
// never expires.
func (e Expiring[V]) Fresh(ttl time.Duration) bool {
	if ttl <= 0 {
		return true
	}
	return time.Since(e.StoredAt) < ttl
}

func NewExpiring[V any](value V) Expiring[V] {
	return Expiring[V]{Value: value, StoredAt: time.Now()}
}
