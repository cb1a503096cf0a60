// Package primary implements the primary client (C2): typed record
// operations addressed against the PQC primary network, consumed through a
// DHT interface the primary network itself is responsible for
// implementing (replication, quorum, record signing, and peer management
// are the DHT's concern, not this package's).
package primary

import (
	"context"
	"sync"

	"github.com/dirvine/saorsa-node/internal/types"
)

// DHT is the externally-consumed capability this package is built on: a
// content-addressed put/get store. Implementations are responsible for
// replication, quorum, and signing of the underlying transport record;
// this package only computes addresses and (de)serializes record bodies.
type DHT interface {
	// Put stores content at cid, overwriting any prior value.
	Put(ctx context.Context, cid types.CID, content []byte) error
	// Get retrieves the content stored at cid. The second return value is
	// false when cid is absent (not an error).
	Get(ctx context.Context, cid types.CID) ([]byte, bool, error)
}

// MemoryDHT is an in-memory DHT adapter used by default and in tests. It
// is not a substitute for the real primary network — per spec §1 the DHT
// implementation itself is out of scope — but it lets the rest of the
// core be exercised without one.
//
// Adapted from internal/storage.MemoryStore's copy-on-read/write
// discipline: every Get/Put copies the byte slice so that neither the
// caller nor the map's internal storage can mutate the other's view.
type MemoryDHT struct {
	data map[types.CID][]byte
	mu   sync.RWMutex
}

// NewMemoryDHT creates an empty in-memory DHT.
func NewMemoryDHT() *MemoryDHT {
	return &MemoryDHT{data: make(map[types.CID][]byte)}
}

// Put stores a defensive copy of content at cid.
func (m *MemoryDHT) Put(_ context.Context, cid types.CID, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(content))
	copy(cp, content)
	m.data[cid] = cp
	return nil
}

// Get returns a defensive copy of the content stored at cid.
func (m *MemoryDHT) Get(_ context.Context, cid types.CID) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.data[cid]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return cp, true, nil
}
