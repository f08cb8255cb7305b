package cache

import (
	"sync"
	"time"
)

// memoryEntry is one cached payload with its expiry and write time.
type memoryEntry struct {
	payload   []byte
	writtenAt time.Time
	expiresAt time.Time
}

// MemoryCache is the in-process tier: a mutex-guarded map with per-entry TTL.
// Expiry is enforced on read; expired entries are evicted and reported as
// misses. Constructed explicitly and injected so handlers stay testable.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the payload and write time for key, or ok=false on a miss or
// expired entry.
func (c *MemoryCache) Get(key string) ([]byte, time.Time, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, time.Time{}, false
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, time.Time{}, false
	}

	return entry.payload, entry.writtenAt, true
}

// GetStale returns the payload and write time regardless of expiry. Used as
// the last-resort fallback when a live upstream fetch fails.
func (c *MemoryCache) GetStale(key string) ([]byte, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return entry.payload, entry.writtenAt, true
}

// Set stores payload under key with the given TTL.
func (c *MemoryCache) Set(key string, payload []byte, ttl time.Duration) {
	now := c.now()
	c.mu.Lock()
	c.entries[key] = memoryEntry{
		payload:   payload,
		writtenAt: now,
		expiresAt: now.Add(ttl),
	}
	c.mu.Unlock()
}

// Delete removes key.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// DeletePrefix removes every key starting with prefix. Used by the admin
// clear operation for derived date-scoped keys.
func (c *MemoryCache) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

// Len reports the number of entries, expired included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
