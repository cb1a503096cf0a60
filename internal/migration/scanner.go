package migration

import (
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dirvine/saorsa-node/internal/types"
)

// antNodeDataPaths are common platform-relative locations for the legacy
// node's data directory under the user's home, checked in order. Kept
// verbatim from the Rust scanner's probe list.
var antNodeDataPaths = []string{
	".local/share/safe/node",                // Linux
	".safe/node",                            // Linux
	"Library/Application Support/safe/node", // macOS
	"AppData/Roaming/safe/node",             // Windows
	"AppData/Local/safe/node",               // Windows
}

// AutoDetect probes the fixed platform-relative locations under the user's
// home, then the ANT_NODE_DATA_DIR environment variable, returning the
// first directory that exists.
func AutoDetect() (string, bool) {
	if home, err := os.UserHomeDir(); err == nil {
		for _, rel := range antNodeDataPaths {
			path := filepath.Join(home, rel)
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				return path, true
			}
		}
	}

	if override := os.Getenv("ANT_NODE_DATA_DIR"); override != "" {
		if info, err := os.Stat(override); err == nil && info.IsDir() {
			return override, true
		}
	}

	return "", false
}

// ScannedRecord is one file found under a legacy record_store/ subtree.
type ScannedRecord struct {
	Path   string
	CID    types.CID
	HasCID bool
	Kind   types.RecordKind
}

// Scan walks root depth-first, collecting every file with no extension or
// an extension of "record" or "chunk"; symlinks are not followed.
func Scan(root string) ([]ScannedRecord, error) {
	var records []ScannedRecord

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		ext := strings.TrimPrefix(filepath.Ext(d.Name()), ".")
		if ext != "" && ext != "record" && ext != "chunk" {
			return nil
		}

		cid, hasCID := extractCID(path)
		records = append(records, ScannedRecord{
			Path:   path,
			CID:    cid,
			HasCID: hasCID,
			Kind:   detectKind(ext, path),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// extractCID inspects the immediate parent directory name for a 64-char
// lowercase hex CID; failing that, it tries grandparent+parent concatenated
// once; otherwise the CID is unknown.
func extractCID(path string) (types.CID, bool) {
	parentDir := filepath.Dir(path)
	parent := filepath.Base(parentDir)
	if cid, ok := decodeHexCID(parent); ok {
		return cid, true
	}

	grandparent := filepath.Base(filepath.Dir(parentDir))
	if cid, ok := decodeHexCID(grandparent + parent); ok {
		return cid, true
	}

	return types.CID{}, false
}

func decodeHexCID(s string) (types.CID, bool) {
	if len(s) != 64 {
		return types.CID{}, false
	}
	for _, r := range s {
		isLowerHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
		if !isLowerHex {
			return types.CID{}, false
		}
	}

	b, err := hex.DecodeString(s)
	if err != nil || len(b) != types.CIDSize {
		return types.CID{}, false
	}
	var cid types.CID
	copy(cid[:], b)
	return cid, true
}

// detectKind resolves a record's type from its extension, falling back to
// a parent-directory substring, and defaulting to Chunk. "register" is the
// legacy network's name for what this codebase calls a Pointer.
func detectKind(ext string, path string) types.RecordKind {
	switch ext {
	case "register":
		return types.RecordPointer
	case "scratchpad":
		return types.RecordScratchpad
	case "graph":
		return types.RecordGraphEntry
	case "chunk":
		return types.RecordChunk
	}

	parent := strings.ToLower(filepath.Base(filepath.Dir(path)))
	switch {
	case strings.Contains(parent, "scratchpad"):
		return types.RecordScratchpad
	case strings.Contains(parent, "register"), strings.Contains(parent, "pointer"):
		return types.RecordPointer
	case strings.Contains(parent, "graph"):
		return types.RecordGraphEntry
	default:
		return types.RecordChunk
	}
}
