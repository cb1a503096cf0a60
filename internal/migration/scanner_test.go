package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirvine/saorsa-node/internal/types"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func TestScanFindsExtensionlessAndChunkFiles(t *testing.T) {
	root := t.TempDir()
	hexDir := "00112233445566778899aabbccddeeff00112233445566778899aabbccddee"

	writeFile(t, filepath.Join(root, hexDir, "data"), []byte("payload-a"))
	writeFile(t, filepath.Join(root, hexDir, "data.chunk"), []byte("payload-b"))
	writeFile(t, filepath.Join(root, hexDir, "data.json"), []byte("ignored"))

	records, err := Scan(root)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	for _, r := range records {
		assert.True(t, r.HasCID)
	}
}

func TestExtractCIDFromParentDir(t *testing.T) {
	root := t.TempDir()
	hexDir := "00112233445566778899aabbccddeeff00112233445566778899aabbccddee"
	path := filepath.Join(root, hexDir, "record")
	writeFile(t, path, []byte("x"))

	cid, ok := extractCID(path)
	require.True(t, ok)

	expected, ok := decodeHexCID(hexDir)
	require.True(t, ok)
	assert.Equal(t, expected, cid)
}

func TestExtractCIDUnknownWhenNeitherParentNorGrandparentMatch(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "not-hex", "also-not-hex", "record")
	writeFile(t, path, []byte("x"))

	_, ok := extractCID(path)
	assert.False(t, ok)
}

func TestDetectKindByExtension(t *testing.T) {
	assert.Equal(t, types.RecordScratchpad, detectKind("scratchpad", "/x/y/data.scratchpad"))
	assert.Equal(t, types.RecordPointer, detectKind("register", "/x/y/data.register"))
	assert.Equal(t, types.RecordGraphEntry, detectKind("graph", "/x/y/data.graph"))
	assert.Equal(t, types.RecordChunk, detectKind("chunk", "/x/y/data.chunk"))
}

func TestDetectKindByParentDirSubstring(t *testing.T) {
	assert.Equal(t, types.RecordScratchpad, detectKind("", "/x/scratchpad_store/data"))
	assert.Equal(t, types.RecordPointer, detectKind("", "/x/register_store/data"))
}

func TestDetectKindDefaultsToChunk(t *testing.T) {
	assert.Equal(t, types.RecordChunk, detectKind("", "/x/somewhere/data"))
}

func TestAutoDetectNoPanic(t *testing.T) {
	_, _ = AutoDetect()
}
