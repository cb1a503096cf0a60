package hybrid

import "sync"

// Stats is a snapshot of the hybrid router's cumulative counters. The
// hybrid-stats-closure property from §8 holds over it: PrimaryHits +
// LegacyHits + Misses <= total gets, and Migrations <= LegacyHits.
type Stats struct {
	PrimaryHits   uint64
	LegacyHits    uint64
	Misses        uint64
	PrimaryWrites uint64
	Migrations    uint64
}

// statsBox holds Stats behind one exclusive lock. Adapted from
// internal/shard.ShardStats/OperationStats — that type uses atomics
// per-field because its counters are independent; here the hybrid router
// needs several counters to appear to move together within one read
// (§5's ordering guarantees), so one mutex guards the whole struct
// instead of per-field atomics.
type statsBox struct {
	mu sync.Mutex
	s  Stats
}

func (b *statsBox) snapshot() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.s
}

func (b *statsBox) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.s = Stats{}
}

func (b *statsBox) addPrimaryHit() {
	b.mu.Lock()
	b.s.PrimaryHits++
	b.mu.Unlock()
}

func (b *statsBox) addLegacyHit() {
	b.mu.Lock()
	b.s.LegacyHits++
	b.mu.Unlock()
}

func (b *statsBox) addMiss() {
	b.mu.Lock()
	b.s.Misses++
	b.mu.Unlock()
}

func (b *statsBox) addPrimaryWrite() {
	b.mu.Lock()
	b.s.PrimaryWrites++
	b.mu.Unlock()
}

func (b *statsBox) addMigration() {
	b.mu.Lock()
	b.s.Migrations++
	b.mu.Unlock()
}
