package hybrid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirvine/saorsa-node/internal/legacy"
	"github.com/dirvine/saorsa-node/internal/primary"
	"github.com/dirvine/saorsa-node/internal/types"
)

func newTestRouter(t *testing.T, autoMigrate bool) (*Router, *primary.Client) {
	t.Helper()
	p := primary.New(primary.NewMemoryDHT())
	l := legacy.New(legacy.Config{Enabled: false}, nil)
	return New(p, l, Config{AutoMigrate: autoMigrate}), p
}

func TestRouterPrimaryHit(t *testing.T) {
	ctx := context.Background()
	r, p := newTestRouter(t, false)

	addr, err := p.PutChunk(ctx, []byte("hello"))
	require.NoError(t, err)

	chunk, err := r.GetChunk(ctx, addr)
	require.NoError(t, err)
	require.NotNil(t, chunk)
	assert.Equal(t, []byte("hello"), chunk.Content)
	assert.Equal(t, uint64(1), r.Stats().PrimaryHits)
}

func TestRouterDoubleMiss(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, false)

	chunk, err := r.GetChunk(ctx, types.CID{9, 9, 9})
	require.NoError(t, err)
	assert.Nil(t, chunk)
	assert.Equal(t, uint64(1), r.Stats().Misses)
}

func TestRouterPutIncrementsPrimaryWrites(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, false)

	_, err := r.PutChunk(ctx, []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Stats().PrimaryWrites)
}

func TestRouterExistsPrimary(t *testing.T) {
	ctx := context.Background()
	r, p := newTestRouter(t, false)

	addr, err := p.PutChunk(ctx, []byte("exists"))
	require.NoError(t, err)

	source, found, err := r.Exists(ctx, addr)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, types.SourcePrimary, source)
}

func TestRouterExistsNeither(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, false)

	_, found, err := r.Exists(ctx, types.CID{1, 2, 3})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRouterLookupChunkThenGraphEntry(t *testing.T) {
	ctx := context.Background()
	r, p := newTestRouter(t, false)

	owner := types.OwnerID{1}
	content := []byte("graph content")
	_, err := p.PutGraphEntry(ctx, owner, nil, content)
	require.NoError(t, err)

	result, err := r.Lookup(ctx, types.GraphEntryAddress(owner, nil, content))
	require.NoError(t, err)
	assert.True(t, result.IsFound())
	assert.Equal(t, types.SourcePrimary, result.Source())
	assert.NotNil(t, result.GraphEntry)
}

func TestRouterLookupMiss(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, false)

	result, err := r.Lookup(ctx, types.CID{4, 4, 4})
	require.NoError(t, err)
	assert.False(t, result.IsFound())
}

func TestRouterGetScratchpadHitIncrementsPrimaryHits(t *testing.T) {
	ctx := context.Background()
	r, p := newTestRouter(t, false)

	owner := types.OwnerID{1}
	_, err := p.PutScratchpad(ctx, owner, 1, []byte("payload"), 1, []byte("sig"))
	require.NoError(t, err)

	record, err := r.GetScratchpad(ctx, owner)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, uint64(1), r.Stats().PrimaryHits)
}

func TestRouterGetScratchpadMissIncrementsMisses(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, false)

	record, err := r.GetScratchpad(ctx, types.OwnerID{2})
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Equal(t, uint64(1), r.Stats().Misses)
}

func TestRouterGetPointerHitIncrementsPrimaryHits(t *testing.T) {
	ctx := context.Background()
	r, p := newTestRouter(t, false)

	owner := types.OwnerID{3}
	_, err := p.PutPointer(ctx, owner, types.CID{9}, 1, []byte("sig"))
	require.NoError(t, err)

	record, err := r.GetPointer(ctx, owner)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, uint64(1), r.Stats().PrimaryHits)
}

func TestRouterGetPointerMissIncrementsMisses(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, false)

	record, err := r.GetPointer(ctx, types.OwnerID{4})
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Equal(t, uint64(1), r.Stats().Misses)
}

func TestRouterGetGraphEntryHitIncrementsPrimaryHits(t *testing.T) {
	ctx := context.Background()
	r, p := newTestRouter(t, false)

	owner := types.OwnerID{5}
	content := []byte("graph content")
	_, err := p.PutGraphEntry(ctx, owner, nil, content)
	require.NoError(t, err)

	record, err := r.GetGraphEntry(ctx, types.GraphEntryAddress(owner, nil, content))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, uint64(1), r.Stats().PrimaryHits)
}

func TestRouterGetGraphEntryMissIncrementsMisses(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, false)

	record, err := r.GetGraphEntry(ctx, types.CID{7, 7, 7})
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Equal(t, uint64(1), r.Stats().Misses)
}

func TestRouterResetStats(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRouter(t, false)

	_, err := r.PutChunk(ctx, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Stats().PrimaryWrites)

	r.ResetStats()
	assert.Equal(t, Stats{}, r.Stats())
}
