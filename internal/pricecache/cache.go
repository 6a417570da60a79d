// Package pricecache provides an explicit, injected cache for data fetched
// from external sources (instrument metadata, tradable-pair listings).
// Entries are keyed by (source, symbol, as-of-time) and expire after a fixed
// window, replacing the ambient in-memory caches the sync services would
// otherwise grow.
package pricecache

import (
	"sync"
	"time"
)

// Key identifies one cached value.
type Key struct {
	Source string
	Symbol string
	AsOf   time.Time
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a TTL-bounded cache. The zero value is not usable; construct with New.
type Cache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[Key]entry[V]
	now     func() time.Time
}

// New creates a cache whose entries expire ttl after being stored.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		entries: make(map[Key]entry[V]),
		now:     time.Now,
	}
}

// At builds a key whose as-of component is truncated to the cache window, so
// lookups within the same window share an entry.
func (c *Cache[V]) At(source, symbol string) Key {
	return Key{Source: source, Symbol: symbol, AsOf: c.now().UTC().Truncate(c.ttl)}
}

// Get returns the cached value for the key if present and not expired.
func (c *Cache[V]) Get(k Key) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[k]
	if !ok || c.now().Sub(e.storedAt) > c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores a value under the key.
func (c *Cache[V]) Put(k Key, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = entry[V]{value: v, storedAt: c.now()}
}

// Invalidate removes a single entry.
func (c *Cache[V]) Invalidate(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, k)
}

// InvalidateSource removes every entry belonging to a source.
func (c *Cache[V]) InvalidateSource(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.Source == source {
			delete(c.entries, k)
		}
	}
}

// PurgeExpired drops expired entries. Callers may run this periodically;
// expired entries are otherwise skipped on read and overwritten on write.
func (c *Cache[V]) PurgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := c.now().Add(-c.ttl)
	for k, e := range c.entries {
		if e.storedAt.Before(cutoff) {
			delete(c.entries, k)
		}
	}
}
