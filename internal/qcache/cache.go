// Package qcache provides a small bounded TTL cache for per-session state
// such as seen-question sets. It is injected rather
// than package-global so tests get isolated instances and horizontally
// scaled processes don't pretend to share state.
package qcache

import (
	"sync"
	"time"
)

// Default sizing for the question caches.
const (
	DefaultCapacity = 1000
	DefaultTTL      = 2 * time.Hour
)

type entry struct {
	value   any
	addedAt time.Time
	expires time.Time
}

// Cache is a capacity- and TTL-bounded key/value store, safe for
// concurrent use. At capacity the oldest entry is evicted.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	cap     int
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache with explicit capacity and TTL. Non-positive values
// fall back to the defaults.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]entry),
		cap:     capacity,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the live value for key, or nil and false when absent or
// expired. Expired entries are removed on access.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key, evicting the oldest entry if the cache is
// full and key is new.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.cap {
		c.evictOldestLocked()
	}
	c.entries[key] = entry{
		value:   value,
		addedAt: now,
		expires: now.Add(c.ttl),
	}
}

// Delete removes a key, e.g. on explicit session reset.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep drops every expired entry and returns how many were removed.
// Scheduled periodically by the server.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, e := range c.entries {
		if first || e.addedAt.Before(oldest) {
			oldestKey, oldest = k, e.addedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
