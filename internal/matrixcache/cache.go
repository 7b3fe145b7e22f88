// Package matrixcache memoizes fully composed matrices per analysis run.
// The cache is injected into callers rather than held as process state so
// tests can control elapsed time. Concurrent uncached builds for the same
// run id are not serialized: both rebuild, both write, and the later write
// wins. That is wasted work, not a correctness hazard, because construction
// is deterministic.
package matrixcache

import (
	"sync"
	"time"

	"tmx/internal/model"
)

// DefaultTTL is how long a cached matrix stays valid
const DefaultTTL = 30 * time.Minute

// Cache stores built matrices keyed by analysis-run id
type Cache interface {
	// Get returns the cached matrix for the run id, or false if absent
	// or expired
	Get(analysisID string) (*model.TraceabilityMatrix, bool)
	// Put stores a matrix for the run id
	Put(analysisID string, m *model.TraceabilityMatrix)
	// Evict removes the entry for the run id
	Evict(analysisID string)
}

type cacheEntry struct {
	matrix   *model.TraceabilityMatrix
	cachedAt time.Time
}

// MemoryCache is an in-memory Cache with TTL expiry. Expired entries are
// purged lazily on the next write, not by a background sweep.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   func() time.Time
	entries map[string]cacheEntry
}

// NewMemoryCache creates a cache with the given TTL. A non-positive TTL
// falls back to DefaultTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// SetClock replaces the time source; tests use this to simulate expiry
func (c *MemoryCache) SetClock(clock func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = clock
}

// Get implements Cache
func (c *MemoryCache) Get(analysisID string) (*model.TraceabilityMatrix, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[analysisID]
	if !ok {
		return nil, false
	}
	if c.clock().Sub(entry.cachedAt) >= c.ttl {
		return nil, false
	}
	return entry.matrix, true
}

// Put implements Cache
func (c *MemoryCache) Put(analysisID string, m *model.TraceabilityMatrix) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeExpired()
	c.entries[analysisID] = cacheEntry{matrix: m, cachedAt: c.clock()}
}

// Evict implements Cache
func (c *MemoryCache) Evict(analysisID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, analysisID)
}

// Len returns the number of entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// purgeExpired drops expired entries. Caller holds the lock.
func (c *MemoryCache) purgeExpired() {
	now := c.clock()
	for id, entry := range c.entries {
		if now.Sub(entry.cachedAt) >= c.ttl {
			delete(c.entries, id)
		}
	}
}

// Provider resolves matrices through a cache, rebuilding on miss or on
// forced refresh. There is no automatic invalidation when upstream inputs
// change; callers request a forced refresh instead.
type Provider struct {
	cache Cache
}

// NewProvider creates a provider over the given cache
func NewProvider(cache Cache) *Provider {
	return &Provider{cache: cache}
}

// GetOrBuild returns the cached matrix for the run id unless forceRefresh
// is set or the entry is absent/expired, in which case build is invoked
// and its result cached. The returned bool reports whether the matrix came
// from the cache.
func (p *Provider) GetOrBuild(analysisID string, forceRefresh bool, build func() *model.TraceabilityMatrix) (*model.TraceabilityMatrix, bool) {
	if !forceRefresh {
		if m, ok := p.cache.Get(analysisID); ok {
			return m, true
		}
	}

	m := build()
	p.cache.Put(analysisID, m)
	return m, false
}
