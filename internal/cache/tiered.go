package cache

import (
	"context"
	"log"
	"time"
)

// PersistentStore is the durable key/value tier (the api_cache table).
// It has no TTL enforcement; staleness is judged by the caller against the
// returned write time.
type PersistentStore interface {
	GetEntry(ctx context.Context, key string) (payload []byte, writtenAt time.Time, err error)
	SetEntry(ctx context.Context, key string, payload []byte) error
	DeleteEntry(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// persistentTimeout bounds every read/write against the persistent tier so a
// slow store degrades to the in-process tier instead of stalling requests.
const persistentTimeout = 5 * time.Second

// TieredCache layers the persistent store over the in-process cache.
// Reads consult the persistent tier first, then fall back to memory; writes
// go to both, and a persistent-store failure never fails the request.
type TieredCache struct {
	memory *MemoryCache
	store  PersistentStore
}

// NewTieredCache builds the two-tier cache. store may be nil, leaving a
// memory-only cache (used in tests and when no database is configured).
func NewTieredCache(memory *MemoryCache, store PersistentStore) *TieredCache {
	return &TieredCache{memory: memory, store: store}
}

// Get returns the payload for key if a tier holds a value no older than
// maxAge. The persistent tier is consulted first with a bounded timeout.
func (c *TieredCache) Get(ctx context.Context, key string, maxAge time.Duration) ([]byte, time.Time, bool) {
	if c.store != nil {
		storeCtx, cancel := context.WithTimeout(ctx, persistentTimeout)
		payload, writtenAt, err := c.store.GetEntry(storeCtx, key)
		cancel()
		switch {
		case err == nil && time.Since(writtenAt) <= maxAge:
			log.Printf("[cache] hit (persistent): %s", key)
			return payload, writtenAt, true
		case err != nil:
			log.Printf("[cache] persistent read failed for %s: %v", key, err)
		}
	}

	// The memory entry's own TTL may outlive the caller's window, so the
	// write time is checked here too.
	if payload, writtenAt, ok := c.memory.Get(key); ok && time.Since(writtenAt) <= maxAge {
		log.Printf("[cache] hit (memory): %s", key)
		return payload, writtenAt, true
	}

	log.Printf("[cache] miss: %s", key)
	return nil, time.Time{}, false
}

// GetStale returns the newest payload of any age across both tiers, for
// serving after an upstream failure.
func (c *TieredCache) GetStale(ctx context.Context, key string) ([]byte, time.Time, bool) {
	memPayload, memAt, memOK := c.memory.GetStale(key)

	if c.store != nil {
		storeCtx, cancel := context.WithTimeout(ctx, persistentTimeout)
		payload, writtenAt, err := c.store.GetEntry(storeCtx, key)
		cancel()
		if err == nil && (!memOK || writtenAt.After(memAt)) {
			return payload, writtenAt, true
		}
	}

	if memOK {
		return memPayload, memAt, true
	}
	return nil, time.Time{}, false
}

// Set writes payload to both tiers. The in-process write always happens;
// a persistent write failure is logged and dropped.
func (c *TieredCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	c.memory.Set(key, payload, ttl)

	if c.store != nil {
		storeCtx, cancel := context.WithTimeout(ctx, persistentTimeout)
		defer cancel()
		if err := c.store.SetEntry(storeCtx, key, payload); err != nil {
			log.Printf("[cache] persistent write failed for %s: %v", key, err)
			return
		}
	}
	log.Printf("[cache] wrote: %s (%d bytes)", key, len(payload))
}

// Delete removes key from both tiers.
func (c *TieredCache) Delete(ctx context.Context, key string) {
	c.memory.Delete(key)

	if c.store != nil {
		storeCtx, cancel := context.WithTimeout(ctx, persistentTimeout)
		defer cancel()
		if err := c.store.DeleteEntry(storeCtx, key); err != nil {
			log.Printf("[cache] persistent delete failed for %s: %v", key, err)
		}
	}
}

// DeletePrefix removes every key starting with prefix from both tiers.
func (c *TieredCache) DeletePrefix(ctx context.Context, prefix string) {
	c.memory.DeletePrefix(prefix)

	if c.store != nil {
		storeCtx, cancel := context.WithTimeout(ctx, persistentTimeout)
		defer cancel()
		if n, err := c.store.DeletePrefix(storeCtx, prefix); err != nil {
			log.Printf("[cache] persistent prefix delete failed for %s: %v", prefix, err)
		} else if n > 0 {
			log.Printf("[cache] cleared %d persistent entries under %s", n, prefix)
		}
	}
}
