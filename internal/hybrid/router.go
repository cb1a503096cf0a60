// Package hybrid implements the hybrid router (C5): primary-first reads
// with legacy fallback (chunks only) and optional auto-migration on a
// legacy hit, write pass-through to the primary network, and the stats
// counters both are measured against.
package hybrid

import (
	"context"

	"github.com/dirvine/saorsa-node/internal/legacy"
	"github.com/dirvine/saorsa-node/internal/primary"
	"github.com/dirvine/saorsa-node/internal/types"
)

// Config configures the hybrid Router.
type Config struct {
	// AutoMigrate republishes a legacy-sourced chunk to the primary
	// network on every legacy hit.
	AutoMigrate bool
}

// Router is the hybrid router (C5).
type Router struct {
	primary *primary.Client
	legacy  *legacy.Client
	config  Config
	stats   statsBox
}

// New constructs a Router over primary and legacy clients.
func New(primaryClient *primary.Client, legacyClient *legacy.Client, config Config) *Router {
	return &Router{primary: primaryClient, legacy: legacyClient, config: config}
}

// GetChunk tries the primary client first; on a miss or error it falls
// back to the legacy client. A legacy hit increments LegacyHits and,
// when auto-migration is enabled, republishes the chunk to the primary
// network and increments Migrations — but always returns the original
// legacy-sourced record, per §4.5. A double miss increments Misses.
func (r *Router) GetChunk(ctx context.Context, addr types.CID) (*types.Chunk, error) {
	chunk, err := r.primary.GetChunk(ctx, addr)
	if err == nil && chunk != nil {
		r.stats.addPrimaryHit()
		return chunk, nil
	}

	legacyChunk, legacyErr := r.legacy.GetChunk(ctx, addr)
	if legacyErr != nil {
		return nil, legacyErr
	}
	if legacyChunk == nil {
		r.stats.addMiss()
		return nil, nil
	}

	r.stats.addLegacyHit()
	if r.config.AutoMigrate {
		if _, migrateErr := r.primary.PutChunk(ctx, legacyChunk.Content); migrateErr == nil {
			r.stats.addMigration()
		}
	}
	return legacyChunk, nil
}

// GetScratchpad probes the primary client only: the legacy network's
// mutable records are unreachable via our owner-id scheme (§4.3), so
// there is no fallback to attempt. A hit still increments PrimaryHits
// and a miss still increments Misses, per §4.5's "for every typed read".
func (r *Router) GetScratchpad(ctx context.Context, owner types.OwnerID) (*types.Scratchpad, error) {
	record, err := r.primary.GetScratchpad(ctx, owner)
	if err != nil {
		return nil, err
	}
	if record != nil {
		r.stats.addPrimaryHit()
	} else {
		r.stats.addMiss()
	}
	return record, nil
}

// GetPointer probes the primary client only, for the same reason as
// GetScratchpad, and instruments hits/misses the same way.
func (r *Router) GetPointer(ctx context.Context, owner types.OwnerID) (*types.Pointer, error) {
	record, err := r.primary.GetPointer(ctx, owner)
	if err != nil {
		return nil, err
	}
	if record != nil {
		r.stats.addPrimaryHit()
	} else {
		r.stats.addMiss()
	}
	return record, nil
}

// GetGraphEntry probes the primary client only: graph entries are
// CID-addressed, but legacy.Client.GetGraphEntry always returns nil per
// §4.3, so there is nothing to fall back to. A hit still increments
// PrimaryHits and a miss still increments Misses.
func (r *Router) GetGraphEntry(ctx context.Context, addr types.CID) (*types.GraphEntry, error) {
	record, err := r.primary.GetGraphEntry(ctx, addr)
	if err != nil {
		return nil, err
	}
	if record != nil {
		r.stats.addPrimaryHit()
	} else {
		r.stats.addMiss()
	}
	return record, nil
}

// PutChunk writes through to the primary client and increments
// PrimaryWrites.
func (r *Router) PutChunk(ctx context.Context, content []byte) (types.CID, error) {
	addr, err := r.primary.PutChunk(ctx, content)
	if err != nil {
		return types.CID{}, err
	}
	r.stats.addPrimaryWrite()
	return addr, nil
}

// PutScratchpad writes through to the primary client and increments
// PrimaryWrites.
func (r *Router) PutScratchpad(ctx context.Context, owner types.OwnerID, contentType uint64, payload []byte, counter uint64, signature []byte) (types.Scratchpad, error) {
	record, err := r.primary.PutScratchpad(ctx, owner, contentType, payload, counter, signature)
	if err != nil {
		return types.Scratchpad{}, err
	}
	r.stats.addPrimaryWrite()
	return record, nil
}

// PutPointer writes through to the primary client and increments
// PrimaryWrites.
func (r *Router) PutPointer(ctx context.Context, owner types.OwnerID, target types.CID, counter uint64, signature []byte) (types.Pointer, error) {
	record, err := r.primary.PutPointer(ctx, owner, target, counter, signature)
	if err != nil {
		return types.Pointer{}, err
	}
	r.stats.addPrimaryWrite()
	return record, nil
}

// PutGraphEntry writes through to the primary client and increments
// PrimaryWrites.
func (r *Router) PutGraphEntry(ctx context.Context, owner types.OwnerID, parents []types.CID, content []byte) (types.GraphEntry, error) {
	record, err := r.primary.PutGraphEntry(ctx, owner, parents, content)
	if err != nil {
		return types.GraphEntry{}, err
	}
	r.stats.addPrimaryWrite()
	return record, nil
}

// Exists probes primary, then legacy, returning the DataSource it was
// found under, or (false-ish) when neither has it.
func (r *Router) Exists(ctx context.Context, addr types.CID) (types.DataSource, bool, error) {
	ok, err := r.primary.Exists(ctx, addr)
	if err != nil {
		return 0, false, err
	}
	if ok {
		return types.SourcePrimary, true, nil
	}

	ok, err = r.legacy.Exists(ctx, addr)
	if err != nil {
		return 0, false, err
	}
	if ok {
		return types.SourceLegacy, true, nil
	}
	return 0, false, nil
}

// Lookup tries GetChunk then GetGraphEntry — the two record types with
// CID-shaped addresses — and returns a tagged LookupResult. Scratchpad
// and pointer are not probed here because their addresses are
// owner-derived, not CID-derived (§4.5).
func (r *Router) Lookup(ctx context.Context, addr types.CID) (types.LookupResult, error) {
	chunk, err := r.GetChunk(ctx, addr)
	if err != nil {
		return types.LookupResult{}, err
	}
	if chunk != nil {
		return types.LookupResult{Chunk: chunk, Found: true}, nil
	}

	entry, err := r.GetGraphEntry(ctx, addr)
	if err != nil {
		return types.LookupResult{}, err
	}
	if entry != nil {
		return types.LookupResult{GraphEntry: entry, Found: true}, nil
	}

	return types.LookupResult{Found: false}, nil
}

// Stats returns a snapshot of the router's cumulative counters.
func (r *Router) Stats() Stats {
	return r.stats.snapshot()
}

// ResetStats atomically zeroes every counter.
func (r *Router) ResetStats() {
	r.stats.reset()
}
