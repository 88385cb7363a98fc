/* cache.go
 * Contains the in-process query cache used when no shared redis cache is configured
 * Authors: Gamers Bot contributors
 */

package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

// sweepInterval is how often a write also drops every expired entry
const sweepInterval = time.Minute

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a mutex guarded map with per entry expiry
type MemoryCache struct {
	mu        sync.Mutex
	entries   map[string]cacheEntry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryCache creates an empty MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached value. Expired entries are dropped on read
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

// Set stores value under key. A ttl of zero keeps the entry until it is deleted
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) >= sweepInterval {
		c.sweepLocked(now)
	}
	entry := cacheEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

// sweepLocked drops expired entries that were never read again. c.mu must be held
func (c *MemoryCache) sweepLocked(now time.Time) {
	for key, entry := range c.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.lastSweep = now
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}
