package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dirvine/saorsa-node/internal/types"
)

func TestRegistrySetAndGet(t *testing.T) {
	r := NewRegistry()
	cid := types.CID{1}

	_, ok := r.Get(cid)
	assert.False(t, ok)

	r.Set(cid, Migrated)
	status, ok := r.Get(cid)
	assert.True(t, ok)
	assert.Equal(t, Migrated, status)
}

func TestRegistryAllReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Set(types.CID{1}, Migrated)

	all := r.All()
	all[types.CID{2}] = Failed

	_, ok := r.Get(types.CID{2})
	assert.False(t, ok, "mutating the returned copy must not affect the registry")
}

func TestRegistryCounts(t *testing.T) {
	r := NewRegistry()
	r.Set(types.CID{1}, Migrated)
	r.Set(types.CID{2}, Migrated)
	r.Set(types.CID{3}, Failed)
	r.Set(types.CID{4}, Pending)

	migrated, failed, pending := r.Counts()
	assert.Equal(t, 2, migrated)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, pending)
}
