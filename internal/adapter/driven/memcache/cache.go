// Package memcache implements the ResponseCache port as a process-local map
// with per-entry expiry. Expired entries are evicted lazily on read; there is
// no background sweeper. Each process holds its own cache, so workers may
// serve different values within one TTL window.
package memcache

import (
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

// DefaultTTL applies when Set is called with a non-positive ttl.
const DefaultTTL = 30 * time.Second

// Compile-time interface satisfaction check.
var _ driven.ResponseCache = (*Cache)(nil)

// entry is never mutated after insertion; Set replaces it whole.
type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL key/value store safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithDefaultTTL overrides DefaultTTL.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]entry),
		defaultTTL: DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key while now < expiresAt.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().Before(e.expiresAt) {
		return e.value, true
	}

	c.mu.Lock()
	// Another goroutine may have replaced the entry since the read lock was released.
	if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil, false
}

// Set stores value under key, replacing any previous entry and its expiry.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	e := entry{value: value, expiresAt: c.now().Add(ttl)}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Invalidate removes key if present.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidatePrefix removes every key starting with prefix. An empty prefix
// clears the cache.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prefix == "" {
		clear(c.entries)
		return
	}
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of stored entries, including expired ones not yet
// evicted by a read.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
