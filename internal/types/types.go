// Package types defines the data model shared by every saorsa-node
// subsystem: content identifiers, the four record types, and the tagged
// results the hybrid router returns to callers.
package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
)

// CIDSize is the length in bytes of every content identifier.
const CIDSize = 32

// OwnerIDSize is the length in bytes of an owner public key.
const OwnerIDSize = 32

// CID is a 32-byte content identifier: SHA-256 for chunks, a derived hash
// for the owner-addressed record types.
type CID [CIDSize]byte

// OwnerID is a 32-byte public key used to derive owner-addressed record
// locations.
type OwnerID [OwnerIDSize]byte

// Size ceilings from the data model (§3): chunk and scratchpad payloads are
// bounded, graph-entry content is bounded tighter.
const (
	MaxChunkBytes      = 4 * 1024 * 1024
	MaxScratchpadBytes = 4 * 1024 * 1024
	MaxGraphEntryBytes = 100 * 1024
)

// DataSource records which network a record was ultimately served from.
type DataSource int

const (
	// SourcePrimary means the record came from the PQC primary DHT.
	SourcePrimary DataSource = iota
	// SourceLegacy means the record came from the legacy network fallback.
	SourceLegacy
	// SourceCache means the record was already resident in a local cache.
	SourceCache
)

// String renders a DataSource for logging and event payloads.
func (s DataSource) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceLegacy:
		return "legacy"
	case SourceCache:
		return "cache"
	default:
		return "unknown"
	}
}

// RecordKind distinguishes the four record types for migration-time type
// detection and for tagging LookupResult.
type RecordKind int

const (
	RecordChunk RecordKind = iota
	RecordScratchpad
	RecordPointer
	RecordGraphEntry
)

// ChunkAddress returns the content address of a chunk: SHA-256 of its
// content. This is the content-address law from §8: address ==
// SHA-256(content).
func ChunkAddress(content []byte) CID {
	return CID(sha256.Sum256(content))
}

// ScratchpadAddress returns SHA-256("scratchpad:" ‖ owner).
func ScratchpadAddress(owner OwnerID) CID {
	return prefixedAddress("scratchpad:", owner[:])
}

// PointerAddress returns SHA-256("pointer:" ‖ owner).
func PointerAddress(owner OwnerID) CID {
	return prefixedAddress("pointer:", owner[:])
}

// GraphEntryAddress returns SHA-256("graph:" ‖ owner ‖ parents ‖ content),
// folding owner, parent CIDs (in order), and content into one address so
// that identical-address writes are exactly the idempotent case spec §3
// requires.
func GraphEntryAddress(owner OwnerID, parents []CID, content []byte) CID {
	h := sha256.New()
	h.Write([]byte("graph:"))
	h.Write(owner[:])
	for _, p := range parents {
		h.Write(p[:])
	}
	h.Write(content)
	var out CID
	copy(out[:], h.Sum(nil))
	return out
}

func prefixedAddress(prefix string, owner []byte) CID {
	h := sha256.New()
	h.Write([]byte(prefix))
	h.Write(owner)
	var out CID
	copy(out[:], h.Sum(nil))
	return out
}

// Chunk is an immutable content-addressed blob. Never mutated after
// creation; may be re-published on legacy-to-primary migration.
type Chunk struct {
	Address CID
	Content []byte
	Source  DataSource
}

// Scratchpad is a mutable single-owner record. Counter must strictly
// increase on every write; writes with Counter <= stored.Counter are
// rejected at the API boundary.
type Scratchpad struct {
	Owner       OwnerID
	ContentType uint64
	Payload     []byte
	Counter     uint64
	Signature   []byte
	Source      DataSource
}

// Pointer is a mutable reference to a CID. Same counter/signature rules as
// Scratchpad.
type Pointer struct {
	Owner     OwnerID
	Target    CID
	Signature []byte
	Counter   uint64
	Source    DataSource
}

// GraphEntry is a DAG node with multiple parents. Descendants are derived
// on demand when a reader asks for them; they are never persisted as
// back-pointers.
type GraphEntry struct {
	Owner       OwnerID
	Parents     []CID
	Content     []byte
	Descendants []CID
	Source      DataSource
}

// SigningTuple returns the canonical bytes a Scratchpad's signature
// authenticates: owner, content type, payload, and counter concatenated in
// a fixed, unambiguous order (length-prefixed so no field can bleed into
// its neighbor). This resolves spec §9's open question in favor of
// authenticating the full tuple including the counter.
func (s Scratchpad) SigningTuple() []byte {
	return signingTuple(s.Owner, s.ContentType, s.Payload, s.Counter)
}

// SigningTuple returns the canonical bytes a Pointer's signature
// authenticates, using the same tuple shape as Scratchpad but with Target
// in place of ContentType/Payload.
func (p Pointer) SigningTuple() []byte {
	var buf bytes.Buffer
	buf.Write(p.Owner[:])
	buf.Write(p.Target[:])
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], p.Counter)
	buf.Write(ctr[:])
	return buf.Bytes()
}

func signingTuple(owner OwnerID, contentType uint64, payload []byte, counter uint64) []byte {
	var buf bytes.Buffer
	buf.Write(owner[:])
	var ct [8]byte
	binary.BigEndian.PutUint64(ct[:], contentType)
	buf.Write(ct[:])
	var plen [8]byte
	binary.BigEndian.PutUint64(plen[:], uint64(len(payload)))
	buf.Write(plen[:])
	buf.Write(payload)
	var ctr [8]byte
	binary.BigEndian.PutUint64(ctr[:], counter)
	buf.Write(ctr[:])
	return buf.Bytes()
}

// LookupResult is the tagged union C5's lookup operation returns: exactly
// one of the typed records, or NotFound.
type LookupResult struct {
	Chunk      *Chunk
	GraphEntry *GraphEntry
	Found      bool
}

// IsFound reports whether the lookup located a record of either probed
// kind (chunk or graph-entry — the only two kinds lookup probes, since
// scratchpad/pointer addresses are owner-derived, not CID-derived).
func (r LookupResult) IsFound() bool {
	return r.Found
}

// Source returns the DataSource of whichever record was found, or
// SourcePrimary (the DataSource zero value) when nothing was found.
func (r LookupResult) Source() DataSource {
	switch {
	case r.Chunk != nil:
		return r.Chunk.Source
	case r.GraphEntry != nil:
		return r.GraphEntry.Source
	default:
		return SourcePrimary
	}
}
