// Package migration implements the migration engine (C6): a Scan ->
// Process -> Report state machine that walks a legacy node's on-disk
// record store, recovers what it can of each record's identity, decrypts
// or passes through its payload, and republishes it via the primary
// client.
package migration

import (
	"context"
	"os"

	"github.com/dirvine/saorsa-node/internal/saorsaerr"
	"github.com/dirvine/saorsa-node/internal/types"
)

// PrimaryPutter is the externally-consumed capability a Migrator
// republishes recovered records through. Only content-addressed chunk
// storage is exercised: record-type-specific fields beyond content are not
// reconstructable from the on-disk form, since that form is chunk-shaped in
// practice (§4.6 step 4).
type PrimaryPutter interface {
	PutChunk(ctx context.Context, content []byte) (types.CID, error)
}

// Config configures a Migrator.
type Config struct {
	// MasterKey, when non-empty, is used to attempt HKDF-derived
	// authenticated decryption of each record before republishing it.
	MasterKey []byte
}

// Stats tallies one Migrate run.
type Stats struct {
	Total    int
	Migrated int
	Failed   int
	Skipped  int

	// ByKind counts migrated records by the type detected at scan time
	// (§4.6 step 2). Every kind is republished through PutChunk (step 4:
	// record-type-specific fields beyond content are not reconstructable
	// from the on-disk form and are dropped), so this is reporting only —
	// it lets an operator see how many scratchpad/pointer/graph-shaped
	// records were folded into chunk storage during the run.
	ByKind map[types.RecordKind]int
}

// ProgressFunc is invoked at record 0, every 100 records, and the last
// record, per §4.6's Report step.
type ProgressFunc func(migrated, total int)

// Migrator is the migration engine (C6).
type Migrator struct {
	putter   PrimaryPutter
	registry *Registry
	config   Config
}

// New constructs a Migrator over putter, recording per-CID outcomes in
// registry.
func New(putter PrimaryPutter, registry *Registry, config Config) *Migrator {
	return &Migrator{putter: putter, registry: registry, config: config}
}

type recordOutcome int

const (
	outcomeMigrated recordOutcome = iota
	outcomeFailed
	outcomeSkipped
)

// Migrate scans root, processes every recovered record, and reports
// progress through onProgress (which may be nil). A single record's
// failure is tallied and does not abort the walk.
func (m *Migrator) Migrate(ctx context.Context, root string, onProgress ProgressFunc) (Stats, error) {
	records, err := Scan(root)
	if err != nil {
		return Stats{}, saorsaerr.Wrap(saorsaerr.Migration, "scan legacy record store", err)
	}

	stats := Stats{Total: len(records), ByKind: make(map[types.RecordKind]int)}

	for i, rec := range records {
		switch m.process(ctx, rec) {
		case outcomeMigrated:
			stats.Migrated++
			stats.ByKind[rec.Kind]++
			if rec.HasCID {
				m.registry.Set(rec.CID, Migrated)
			}
		case outcomeFailed:
			stats.Failed++
			if rec.HasCID {
				m.registry.Set(rec.CID, Failed)
			}
		case outcomeSkipped:
			stats.Skipped++
		}

		if onProgress != nil && isReportPoint(i, len(records)) {
			onProgress(stats.Migrated, stats.Total)
		}
	}

	return stats, nil
}

func isReportPoint(index, total int) bool {
	return index == 0 || (index+1)%100 == 0 || index == total-1
}

func (m *Migrator) process(ctx context.Context, rec ScannedRecord) recordOutcome {
	data, err := os.ReadFile(rec.Path)
	if err != nil {
		return outcomeFailed
	}
	if len(data) == 0 {
		return outcomeSkipped
	}

	payload := decryptOrRaw(m.config.MasterKey, rec.CID, rec.HasCID, data)

	if _, err := m.putter.PutChunk(ctx, payload); err != nil {
		return outcomeFailed
	}
	return outcomeMigrated
}
