// Package cache provides an in-process TTL map used as a best-effort
// accelerator in front of slow lookups. Entries are never purged proactively;
// a stale entry is simply recomputed and overwritten on its next access.
package cache

import (
	"sync"
	"time"
)

// Entry is a stored value and the time it was written.
type Entry[V any] struct {
	Value    V
	StoredAt time.Time
}

// TTL is a map whose entries stop being served once they are older than ttl.
type TTL[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]Entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a TTL cache.
type Option[K comparable, V any] func(*TTL[K, V])

// WithClock overrides time.Now, for tests that need to age entries.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *TTL[K, V]) { c.now = now }
}

// NewTTL returns an empty cache whose entries expire after ttl.
func NewTTL[K comparable, V any](ttl time.Duration, opts ...Option[K, V]) *TTL[K, V] {
	c := &TTL[K, V]{
		entries: make(map[K]Entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the value for key if it was stored less than ttl ago.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.Fresh(e.StoredAt) {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Fresh reports whether a value written at storedAt would still be served.
func (c *TTL[K, V]) Fresh(storedAt time.Time) bool {
	return c.now().Sub(storedAt) < c.ttl
}

// Set stores value under key, replacing any previous entry.
func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.entries[key] = Entry[V]{Value: value, StoredAt: c.now()}
	c.mu.Unlock()
}

// Peek returns the raw entry regardless of age.
func (c *TTL[K, V]) Peek(key K) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Len counts stored entries, stale ones included.
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *TTL[K, V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[K]Entry[V])
	c.mu.Unlock()
}
