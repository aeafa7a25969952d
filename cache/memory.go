package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-memory cache implementation. It also keeps basic
// usage counters so the in-memory-store health probe can report on it.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry

	hits   int64
	misses int64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*memoryEntry),
	}
}

// Get retrieves a value. Returns (nil, false) on miss, expiry or an
// invalid key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	if ValidateKey(key) != nil {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		// Expired, clean up lazily.
		c.mu.Lock()
		delete(c.entries, key)
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return entry.value, true
}

// Set stores a value with the given TTL. TTL<=0 means no caching.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	c.entries[key] = &memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

// Delete removes a value. Idempotent, no error on miss.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Stats holds usage counters for a MemoryCache.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// Stats returns current usage counters.
func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

var _ Cache = (*MemoryCache)(nil)
