// Package cache implements the verified-address cache (C1): a bounded LRU
// of content identifiers previously proven paid-for, so repeated writes to
// the same address skip on-chain verification.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dirvine/saorsa-node/internal/types"
)

// DefaultCapacity is the default number of entries (~3.2 MiB resident at
// 32 bytes/entry plus bookkeeping).
const DefaultCapacity = 100_000

// Stats is a point-in-time snapshot of cache activity counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Additions uint64
}

// HitRate returns hits/(hits+misses)*100, or 0 when the cache has never
// been probed.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// VerifiedCache is a fixed-capacity LRU over CID -> struct{}, wrapped in a
// single exclusive lock. Every operation is O(1) amortized and never
// performs I/O, per §4.1's concurrency contract.
type VerifiedCache struct {
	inner *lru.Cache[types.CID, struct{}]
	mu    sync.Mutex
	stats Stats
}

// New creates a verified-address cache with DefaultCapacity.
func New() *VerifiedCache {
	c, err := WithCapacity(DefaultCapacity)
	if err != nil {
		// DefaultCapacity is a positive constant; lru.New only errors on
		// size <= 0, which cannot happen here.
		panic(err)
	}
	return c
}

// WithCapacity creates a verified-address cache with the given capacity.
// Capacity 0 is promoted to 1, matching §4.1's "capacity 0 is promoted to
// 1" rule.
func WithCapacity(capacity int) (*VerifiedCache, error) {
	if capacity < 1 {
		capacity = 1
	}
	inner, err := lru.New[types.CID, struct{}](capacity)
	if err != nil {
		return nil, err
	}
	return &VerifiedCache{inner: inner}, nil
}

// Contains reports whether cid is cached, updating LRU recency and the
// hit/miss counters as a side effect.
func (c *VerifiedCache) Contains(cid types.CID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, found := c.inner.Get(cid)
	if found {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return found
}

// Insert adds cid to the cache, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *VerifiedCache) Insert(cid types.CID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inner.Add(cid, struct{}{})
	c.stats.Additions++
}

// Len returns the current number of entries.
func (c *VerifiedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Len()
}

// Clear removes every entry from the cache. Stats are not reset.
func (c *VerifiedCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Purge()
}

// Stats returns a snapshot of the current hit/miss/addition counters.
func (c *VerifiedCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
