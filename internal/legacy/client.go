// Package legacy implements the legacy client (C3): read-only chunk
// queries against the pre-existing legacy network, used as a fallback
// when the primary network misses. Mutable legacy record types
// (scratchpad, pointer, graph entry) are explicitly unsupported for
// fallback because their legacy addresses are 48-byte BLS keys that
// cannot be reconstructed from a 32-byte owner identifier — see §1's
// Non-goals and §4.3.
package legacy

import (
	"context"
	"errors"
	"time"

	"github.com/dirvine/saorsa-node/internal/saorsaerr"
	"github.com/dirvine/saorsa-node/internal/types"
)

// ErrRecordNotFound is returned by a ChunkFetcher when the requested
// address has no record, distinguishing "not found" from a transport
// failure.
var ErrRecordNotFound = errors.New("legacy record not found")

// ChunkFetcher is the externally-consumed legacy-network capability: a
// single chunk-get RPC. The legacy network's own replication, peer
// selection, and protocol framing are out of scope here.
type ChunkFetcher interface {
	ChunkGet(ctx context.Context, addr types.CID) ([]byte, error)
}

// Config configures the legacy client.
type Config struct {
	// BootstrapPeers are multiaddr-shaped or "host:port" strings naming
	// legacy-network peers to connect through.
	BootstrapPeers []string
	// Timeout bounds every chunk-get call.
	Timeout time.Duration
	// Enabled disables the client outright when false, without looking at
	// BootstrapPeers at all.
	Enabled bool
}

// DefaultConfig returns the legacy client's zero-value-safe defaults,
// mirroring original_source/src/client/legacy.rs::LegacyConfig::default().
func DefaultConfig() Config {
	return Config{Timeout: 30 * time.Second, Enabled: true}
}

// Client is the legacy client (C3). It is permanently disabled — every
// method returns the empty/not-found result without contacting the
// network — when Config.Enabled is false, when no bootstrap peers are
// configured, or when none of the configured bootstrap peers parse.
type Client struct {
	fetcher ChunkFetcher
	timeout time.Duration
	enabled bool
}

// New constructs a legacy Client. fetcher performs the actual chunk-get
// RPC once the client determines it should be enabled; fetcher may be nil
// when cfg disables the client (it is never invoked in that case).
func New(cfg Config, fetcher ChunkFetcher) *Client {
	peers := parsePeers(cfg.BootstrapPeers)
	enabled := cfg.Enabled && len(peers) >= 1 && fetcher != nil

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{fetcher: fetcher, timeout: timeout, enabled: enabled}
}

// IsEnabled reports whether the client will contact the legacy network at
// all.
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// GetChunk issues a bounded chunk-get. A "record not found" response maps
// to (nil, nil); any other transport failure or a timeout maps to a
// Network error.
func (c *Client) GetChunk(ctx context.Context, addr types.CID) (*types.Chunk, error) {
	if !c.enabled {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content, err := c.fetcher.ChunkGet(ctx, addr)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, saorsaerr.Wrap(saorsaerr.Network, "legacy chunk get timed out", err)
		}
		return nil, saorsaerr.Wrap(saorsaerr.Network, "legacy chunk get failed", err)
	}
	return &types.Chunk{Address: addr, Content: content, Source: types.SourceLegacy}, nil
}

// Exists is implemented as a bounded GetChunk — §4.3 assumes no
// lighter-weight existence probe is available on the legacy network.
func (c *Client) Exists(ctx context.Context, addr types.CID) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	chunk, err := c.GetChunk(ctx, addr)
	if err != nil {
		return false, err
	}
	return chunk != nil, nil
}

// GetScratchpad always returns (nil, nil): the legacy network addresses
// scratchpads with 48-byte BLS public keys that our 32-byte OwnerID cannot
// reconstruct. Do not invent a mapping — see DESIGN.md and §9.
func (c *Client) GetScratchpad(_ context.Context, _ types.OwnerID) (*types.Scratchpad, error) {
	return nil, nil
}

// GetPointer always returns (nil, nil), for the same reason as
// GetScratchpad.
func (c *Client) GetPointer(_ context.Context, _ types.OwnerID) (*types.Pointer, error) {
	return nil, nil
}

// GetGraphEntry always returns (nil, nil), for the same reason as
// GetScratchpad.
func (c *Client) GetGraphEntry(_ context.Context, _ types.CID) (*types.GraphEntry, error) {
	return nil, nil
}
