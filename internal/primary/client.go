package primary

import (
	"context"
	"math"

	"github.com/dirvine/saorsa-node/internal/saorsaerr"
	"github.com/dirvine/saorsa-node/internal/types"
)

// Client is the primary client (C2): four typed record operations plus
// Exists, all addressed against dht. Signing of the underlying DHT
// transport record is the DHT's responsibility (§4.2); Client only
// computes content addresses and (de)serializes record bodies.
type Client struct {
	dht DHT
}

// New wraps dht as a primary Client. dht may be nil, in which case every
// operation fails with a Network error, matching §4.2's "fail with
// Network when the DHT handle is absent" rule.
func New(dht DHT) *Client {
	return &Client{dht: dht}
}

func (c *Client) requireDHT() error {
	if c.dht == nil {
		return saorsaerr.New(saorsaerr.Network, "no DHT handle configured")
	}
	return nil
}

// PutChunk computes address = SHA-256(content) and stores content at that
// address.
func (c *Client) PutChunk(ctx context.Context, content []byte) (types.CID, error) {
	if err := c.requireDHT(); err != nil {
		return types.CID{}, err
	}
	if len(content) > types.MaxChunkBytes {
		return types.CID{}, saorsaerr.New(saorsaerr.Serialization, "chunk exceeds maximum size")
	}
	addr := types.ChunkAddress(content)
	if err := c.dht.Put(ctx, addr, content); err != nil {
		return types.CID{}, saorsaerr.Wrap(saorsaerr.Network, "put chunk", err)
	}
	return addr, nil
}

// GetChunk retrieves the chunk stored at addr, if any. A value stored at
// addr whose SHA-256 is not addr (e.g. an encoded graph entry) is not a
// chunk and yields (nil, nil).
func (c *Client) GetChunk(ctx context.Context, addr types.CID) (*types.Chunk, error) {
	if err := c.requireDHT(); err != nil {
		return nil, err
	}
	content, ok, err := c.dht.Get(ctx, addr)
	if err != nil {
		return nil, saorsaerr.Wrap(saorsaerr.Network, "get chunk", err)
	}
	if !ok || types.ChunkAddress(content) != addr {
		return nil, nil
	}
	return &types.Chunk{Address: addr, Content: content, Source: types.SourcePrimary}, nil
}

// PutScratchpad assembles, validates, and stores a scratchpad record at
// SHA-256("scratchpad:" ‖ owner). A write with counter <= the currently
// stored counter is rejected (§3's monotonicity invariant); counter ==
// MaxUint64 is refused outright rather than allowed to wrap.
func (c *Client) PutScratchpad(ctx context.Context, owner types.OwnerID, contentType uint64, payload []byte, counter uint64, signature []byte) (types.Scratchpad, error) {
	if err := c.requireDHT(); err != nil {
		return types.Scratchpad{}, err
	}
	if len(payload) > types.MaxScratchpadBytes {
		return types.Scratchpad{}, saorsaerr.New(saorsaerr.Serialization, "scratchpad payload exceeds maximum size")
	}
	if counter == math.MaxUint64 {
		return types.Scratchpad{}, saorsaerr.New(saorsaerr.Crypto, "counter wraparound refused")
	}
	if len(signature) == 0 {
		return types.Scratchpad{}, saorsaerr.New(saorsaerr.Crypto, "unsigned scratchpad record rejected")
	}

	addr := types.ScratchpadAddress(owner)
	existing, err := c.getScratchpadRaw(ctx, addr)
	if err != nil {
		return types.Scratchpad{}, err
	}
	if existing != nil && counter <= existing.Counter {
		return types.Scratchpad{}, saorsaerr.New(saorsaerr.Crypto, "scratchpad counter did not increase")
	}

	record := types.Scratchpad{Owner: owner, ContentType: contentType, Payload: payload, Counter: counter, Signature: signature, Source: types.SourcePrimary}
	wire, err := encodeScratchpad(record)
	if err != nil {
		return types.Scratchpad{}, err
	}
	if err := c.dht.Put(ctx, addr, wire); err != nil {
		return types.Scratchpad{}, saorsaerr.Wrap(saorsaerr.Network, "put scratchpad", err)
	}
	return record, nil
}

// GetScratchpad derives the owner's scratchpad address, fetches, and
// decodes it.
func (c *Client) GetScratchpad(ctx context.Context, owner types.OwnerID) (*types.Scratchpad, error) {
	record, err := c.getScratchpadRaw(ctx, types.ScratchpadAddress(owner))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	record.Source = types.SourcePrimary
	return record, nil
}

func (c *Client) getScratchpadRaw(ctx context.Context, addr types.CID) (*types.Scratchpad, error) {
	if err := c.requireDHT(); err != nil {
		return nil, err
	}
	wire, ok, err := c.dht.Get(ctx, addr)
	if err != nil {
		return nil, saorsaerr.Wrap(saorsaerr.Network, "get scratchpad", err)
	}
	if !ok {
		return nil, nil
	}
	record, err := decodeScratchpad(wire)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// PutPointer assembles, validates, and stores a pointer record at
// SHA-256("pointer:" ‖ owner), with the same counter/signature rules as
// PutScratchpad.
func (c *Client) PutPointer(ctx context.Context, owner types.OwnerID, target types.CID, counter uint64, signature []byte) (types.Pointer, error) {
	if err := c.requireDHT(); err != nil {
		return types.Pointer{}, err
	}
	if counter == math.MaxUint64 {
		return types.Pointer{}, saorsaerr.New(saorsaerr.Crypto, "counter wraparound refused")
	}
	if len(signature) == 0 {
		return types.Pointer{}, saorsaerr.New(saorsaerr.Crypto, "unsigned pointer record rejected")
	}

	addr := types.PointerAddress(owner)
	existing, err := c.getPointerRaw(ctx, addr)
	if err != nil {
		return types.Pointer{}, err
	}
	if existing != nil && counter <= existing.Counter {
		return types.Pointer{}, saorsaerr.New(saorsaerr.Crypto, "pointer counter did not increase")
	}

	record := types.Pointer{Owner: owner, Target: target, Signature: signature, Counter: counter, Source: types.SourcePrimary}
	wire, err := encodePointer(record)
	if err != nil {
		return types.Pointer{}, err
	}
	if err := c.dht.Put(ctx, addr, wire); err != nil {
		return types.Pointer{}, saorsaerr.Wrap(saorsaerr.Network, "put pointer", err)
	}
	return record, nil
}

// GetPointer derives the owner's pointer address, fetches, and decodes it.
func (c *Client) GetPointer(ctx context.Context, owner types.OwnerID) (*types.Pointer, error) {
	record, err := c.getPointerRaw(ctx, types.PointerAddress(owner))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	record.Source = types.SourcePrimary
	return record, nil
}

func (c *Client) getPointerRaw(ctx context.Context, addr types.CID) (*types.Pointer, error) {
	if err := c.requireDHT(); err != nil {
		return nil, err
	}
	wire, ok, err := c.dht.Get(ctx, addr)
	if err != nil {
		return nil, saorsaerr.Wrap(saorsaerr.Network, "get pointer", err)
	}
	if !ok {
		return nil, nil
	}
	record, err := decodePointer(wire)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// PutGraphEntry computes address = SHA-256("graph:" ‖ owner ‖ parents ‖
// content) and stores the entry. Identical-address writes are idempotent,
// per §3's immutability rule.
func (c *Client) PutGraphEntry(ctx context.Context, owner types.OwnerID, parents []types.CID, content []byte) (types.GraphEntry, error) {
	if err := c.requireDHT(); err != nil {
		return types.GraphEntry{}, err
	}
	if len(content) > types.MaxGraphEntryBytes {
		return types.GraphEntry{}, saorsaerr.New(saorsaerr.Serialization, "graph entry content exceeds maximum size")
	}

	addr := types.GraphEntryAddress(owner, parents, content)
	record := types.GraphEntry{Owner: owner, Parents: parents, Content: content, Source: types.SourcePrimary}
	wire, err := encodeGraphEntry(record)
	if err != nil {
		return types.GraphEntry{}, err
	}
	if err := c.dht.Put(ctx, addr, wire); err != nil {
		return types.GraphEntry{}, saorsaerr.Wrap(saorsaerr.Network, "put graph entry", err)
	}
	return record, nil
}

// GetGraphEntry fetches and decodes the graph entry at addr. Descendants
// are never stored on the wire; they are left empty here and populated by
// a caller that walks the DAG, per §9's parents/descendants design note.
func (c *Client) GetGraphEntry(ctx context.Context, addr types.CID) (*types.GraphEntry, error) {
	if err := c.requireDHT(); err != nil {
		return nil, err
	}
	wire, ok, err := c.dht.Get(ctx, addr)
	if err != nil {
		return nil, saorsaerr.Wrap(saorsaerr.Network, "get graph entry", err)
	}
	if !ok {
		return nil, nil
	}
	record, err := decodeGraphEntry(wire)
	if err != nil {
		return nil, err
	}
	record.Source = types.SourcePrimary
	return &record, nil
}

// Exists reports whether addr has any record stored under it, via DHT Get
// truthiness.
func (c *Client) Exists(ctx context.Context, addr types.CID) (bool, error) {
	if err := c.requireDHT(); err != nil {
		return false, err
	}
	_, ok, err := c.dht.Get(ctx, addr)
	if err != nil {
		return false, saorsaerr.Wrap(saorsaerr.Network, "exists", err)
	}
	return ok, nil
}
