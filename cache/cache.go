// ABOUTME: TTL cache backing server-side sessions and the request-type catalog
// ABOUTME: Concurrent-safe via sync.Map; expired entries are dropped lazily and by a sweeper

package cache

import (
	"log/slog"
	"sync"
	"time"
)

const sweepInterval = time.Minute

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is an in-memory key/value store with per-entry expiry. A read past
// the expiry behaves as a miss even if the sweeper has not run yet.
type Cache struct {
	entries    sync.Map
	defaultTTL time.Duration
}

// New creates a cache whose Set entries live for defaultTTL. Sessions and
// catalog reads override it through SetWithTTL.
func New(defaultTTL time.Duration) *Cache {
	c := &Cache{defaultTTL: defaultTTL}
	go c.sweep()
	return c
}

// Get returns the live value for key, or false on a miss or expired entry.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}

	e := v.(entry)
	if time.Now().After(e.expiresAt) {
		c.entries.Delete(key)
		slog.Debug("Cache expired", "key", key)
		return nil, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.entries.Store(key, entry{value: value, expiresAt: time.Now().Add(ttl)})
	slog.Debug("Cache set", "key", key, "ttl", ttl)
}

// Clear removes key immediately. Logout and catalog writes use this to
// invalidate without waiting for expiry.
func (c *Cache) Clear(key string) {
	c.entries.Delete(key)
}

// sweep reclaims expired entries so abandoned sessions do not accumulate.
func (c *Cache) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.entries.Range(func(key, v any) bool {
			if now.After(v.(entry).expiresAt) {
				c.entries.Delete(key)
			}
			return true
		})
	}
}
