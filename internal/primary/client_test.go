package primary

import (
	"context"
	"crypto/sha256"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirvine/saorsa-node/internal/saorsaerr"
	"github.com/dirvine/saorsa-node/internal/types"
)

func owner(b byte) types.OwnerID {
	var o types.OwnerID
	for i := range o {
		o[i] = b
	}
	return o
}

func TestPutGetChunkRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryDHT())

	content := []byte("test data")
	addr, err := c.PutChunk(ctx, content)
	require.NoError(t, err)
	assert.Equal(t, types.CID(sha256.Sum256(content)), addr)

	chunk, err := c.GetChunk(ctx, addr)
	require.NoError(t, err)
	require.NotNil(t, chunk)
	assert.Equal(t, content, chunk.Content)
	assert.Equal(t, types.SourcePrimary, chunk.Source)
}

func TestGetChunkMissReturnsNilNil(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryDHT())

	chunk, err := c.GetChunk(ctx, types.CID{})
	require.NoError(t, err)
	assert.Nil(t, chunk)
}

func TestNilDHTFailsWithNetwork(t *testing.T) {
	ctx := context.Background()
	c := New(nil)

	_, err := c.PutChunk(ctx, []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, saorsaerr.KindOf(saorsaerr.Network))
}

func TestScratchpadMonotonicity(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryDHT())
	o := owner(1)

	_, err := c.PutScratchpad(ctx, o, 0, []byte("v1"), 1, []byte("sig"))
	require.NoError(t, err)

	_, err = c.PutScratchpad(ctx, o, 0, []byte("v2"), 2, []byte("sig"))
	require.NoError(t, err)

	_, err = c.PutScratchpad(ctx, o, 0, []byte("stale"), 2, []byte("sig"))
	require.Error(t, err)
	assert.ErrorIs(t, err, saorsaerr.KindOf(saorsaerr.Crypto))

	got, err := c.GetScratchpad(ctx, o)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte("v2"), got.Payload)
	assert.Equal(t, uint64(2), got.Counter)
}

func TestScratchpadRejectsUnsigned(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryDHT())

	_, err := c.PutScratchpad(ctx, owner(1), 0, []byte("v1"), 1, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, saorsaerr.KindOf(saorsaerr.Crypto))
}

func TestScratchpadRefusesCounterWraparound(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryDHT())

	_, err := c.PutScratchpad(ctx, owner(1), 0, []byte("v1"), math.MaxUint64, []byte("sig"))
	require.Error(t, err)
	assert.ErrorIs(t, err, saorsaerr.KindOf(saorsaerr.Crypto))
}

func TestPointerMonotonicity(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryDHT())
	o := owner(2)
	target1 := types.CID{1}
	target2 := types.CID{2}

	_, err := c.PutPointer(ctx, o, target1, 1, []byte("sig"))
	require.NoError(t, err)

	_, err = c.PutPointer(ctx, o, target2, 1, []byte("sig"))
	require.Error(t, err)

	_, err = c.PutPointer(ctx, o, target2, 2, []byte("sig"))
	require.NoError(t, err)

	got, err := c.GetPointer(ctx, o)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, target2, got.Target)
}

func TestGraphEntryIdempotentWrite(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryDHT())
	o := owner(3)
	parents := []types.CID{{9}}
	content := []byte("entry")

	rec1, err := c.PutGraphEntry(ctx, o, parents, content)
	require.NoError(t, err)
	rec2, err := c.PutGraphEntry(ctx, o, parents, content)
	require.NoError(t, err)

	addr1 := types.GraphEntryAddress(o, parents, content)
	addr2 := types.GraphEntryAddress(rec2.Owner, rec2.Parents, rec2.Content)
	assert.Equal(t, addr1, addr2)

	fetched, err := c.GetGraphEntry(ctx, addr1)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, content, fetched.Content)
	_ = rec1
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryDHT())

	addr, err := c.PutChunk(ctx, []byte("payload"))
	require.NoError(t, err)

	ok, err := c.Exists(ctx, addr)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(ctx, types.CID{0xff})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChunkOversizeRejected(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryDHT())

	big := make([]byte, types.MaxChunkBytes+1)
	_, err := c.PutChunk(ctx, big)
	require.Error(t, err)
	assert.ErrorIs(t, err, saorsaerr.KindOf(saorsaerr.Serialization))
}
