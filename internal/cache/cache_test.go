package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirvine/saorsa-node/internal/types"
)

func cid(b byte) types.CID {
	var c types.CID
	for i := range c {
		c[i] = b
	}
	return c
}

func TestVerifiedCacheBasicOperations(t *testing.T) {
	c := New()

	cid1, cid2 := cid(1), cid(2)

	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Contains(cid1))

	c.Insert(cid1)
	assert.True(t, c.Contains(cid1))
	assert.False(t, c.Contains(cid2))
	assert.Equal(t, 1, c.Len())

	c.Insert(cid2)
	assert.True(t, c.Contains(cid1))
	assert.True(t, c.Contains(cid2))
	assert.Equal(t, 2, c.Len())
}

func TestVerifiedCacheStatsHitRate(t *testing.T) {
	c := New()
	target := cid(1)

	assert.False(t, c.Contains(target))
	stats := c.Stats()
	require.Equal(t, uint64(1), stats.Misses)
	require.Equal(t, uint64(0), stats.Hits)

	c.Insert(target)
	stats = c.Stats()
	require.Equal(t, uint64(1), stats.Additions)

	assert.True(t, c.Contains(target))
	stats = c.Stats()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 50.0, stats.HitRate(), 0.01)
}

func TestVerifiedCacheLRUEviction(t *testing.T) {
	c, err := WithCapacity(2)
	require.NoError(t, err)

	cid1, cid2, cid3 := cid(1), cid(2), cid(3)

	c.Insert(cid1)
	c.Insert(cid2)
	require.Equal(t, 2, c.Len())

	c.Insert(cid3)
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Contains(cid1))
}

func TestVerifiedCacheClear(t *testing.T) {
	c := New()
	c.Insert(cid(1))
	c.Insert(cid(2))
	require.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestWithCapacityZeroPromotedToOne(t *testing.T) {
	c, err := WithCapacity(0)
	require.NoError(t, err)

	c.Insert(cid(1))
	c.Insert(cid(2))
	assert.Equal(t, 1, c.Len())
}

func TestHitRateEmptyIsZero(t *testing.T) {
	var s Stats
	assert.Equal(t, 0.0, s.HitRate())
}
