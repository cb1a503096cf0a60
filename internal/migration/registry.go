package migration

import (
	"sync"

	"github.com/dirvine/saorsa-node/internal/types"
)

// Status is a CID's migration state.
type Status int

const (
	Pending Status = iota
	Migrated
	Failed
)

// String renders a Status for logging.
func (s Status) String() string {
	switch s {
	case Migrated:
		return "migrated"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Registry tracks migration status per CID. Adapted from
// internal/coordinator.ShardRegistry's RWMutex-protected map with
// copy-on-read semantics, repurposed here from shard->node to CID->status.
type Registry struct {
	mu       sync.RWMutex
	statuses map[types.CID]Status
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{statuses: make(map[types.CID]Status)}
}

// Set records cid's current status.
func (r *Registry) Set(cid types.CID, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[cid] = status
}

// Get returns cid's status, or false if it has never been recorded.
func (r *Registry) Get(cid types.CID) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.statuses[cid]
	return s, ok
}

// All returns a copy of every tracked status.
func (r *Registry) All() map[types.CID]Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[types.CID]Status, len(r.statuses))
	for k, v := range r.statuses {
		out[k] = v
	}
	return out
}

// Counts tallies the registry by status.
func (r *Registry) Counts() (migrated, failed, pending int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.statuses {
		switch v {
		case Migrated:
			migrated++
		case Failed:
			failed++
		default:
			pending++
		}
	}
	return
}
