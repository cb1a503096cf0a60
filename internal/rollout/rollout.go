// Package rollout implements the staged-rollout scheduler (C7): a
// deterministic per-node delay within an upgrade window, derived from the
// node's identifier so that restarts never drift and the population of
// nodes spreads evenly across the window.
package rollout

import (
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// Scheduler computes deterministic per-node upgrade delays.
type Scheduler struct {
	maxDelayHours uint64
	nodeIDHash    [32]byte
}

// New builds a Scheduler for nodeID with a window of maxDelayHours. A zero
// maxDelayHours disables staged rollout entirely (every call returns zero
// delay).
func New(nodeID []byte, maxDelayHours uint64) *Scheduler {
	return &Scheduler{
		maxDelayHours: maxDelayHours,
		nodeIDHash:    sha256.Sum256(nodeID),
	}
}

// IsEnabled reports whether the scheduler's window is non-zero.
func (s *Scheduler) IsEnabled() bool {
	return s.maxDelayHours > 0
}

// MaxDelayHours returns the configured rollout window.
func (s *Scheduler) MaxDelayHours() uint64 {
	return s.maxDelayHours
}

// CalculateDelay returns this node's fixed delay within the rollout
// window: the first eight bytes of SHA-256(node_id), read as a
// little-endian u64, as a fraction of max_delay_hours*3600 seconds.
func (s *Scheduler) CalculateDelay() time.Duration {
	return fractionalDelay(s.nodeIDHash, s.maxDelayHours)
}

// CalculateDelayForVersion returns a delay specific to version: the hash
// is rehashed as SHA-256(node_id_hash ‖ version) first, so the same node
// lands at a different point in the window for each release version.
func (s *Scheduler) CalculateDelayForVersion(version string) time.Duration {
	if s.maxDelayHours == 0 {
		return 0
	}
	h := sha256.New()
	h.Write(s.nodeIDHash[:])
	h.Write([]byte(version))
	var versioned [32]byte
	copy(versioned[:], h.Sum(nil))
	return fractionalDelay(versioned, s.maxDelayHours)
}

func fractionalDelay(hash [32]byte, maxDelayHours uint64) time.Duration {
	if maxDelayHours == 0 {
		return 0
	}

	hashValue := binary.LittleEndian.Uint64(hash[:8])
	maxDelaySecs := float64(maxDelayHours * 3600)
	fraction := float64(hashValue) / float64(^uint64(0))
	delaySecs := uint64(fraction * maxDelaySecs)
	return time.Duration(delaySecs) * time.Second
}
