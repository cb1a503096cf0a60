package migration

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/dirvine/saorsa-node/internal/types"
)

// hkdfInfo is the fixed HKDF info string distinguishing this key-derivation
// context from any other use of the master key.
const hkdfInfo = "saorsa-node-migration"

// deriveKey derives a per-record ChaCha20-Poly1305 key via HKDF-SHA256 over
// (masterKey, cid).
func deriveKey(masterKey []byte, cid types.CID) ([]byte, error) {
	r := hkdf.New(sha256.New, masterKey, cid[:], []byte(hkdfInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// decryptOrRaw attempts authenticated decryption of data, treating its
// first NonceSize bytes as an embedded nonce and deriving the key from
// (masterKey, cid). On any failure — no master key configured, no CID
// recovered for this record, ciphertext too short, or an authentication
// failure — it returns data unchanged, since the file may already be
// plaintext (spec §4.6 step 3).
func decryptOrRaw(masterKey []byte, cid types.CID, hasCID bool, data []byte) []byte {
	if len(masterKey) == 0 || !hasCID {
		return data
	}

	key, err := deriveKey(masterKey, cid)
	if err != nil {
		return data
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return data
	}
	if len(data) < aead.NonceSize() {
		return data
	}

	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return data
	}
	return plaintext
}
