package migration

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/dirvine/saorsa-node/internal/types"
)

func TestDecryptOrRawDecryptsValidCiphertext(t *testing.T) {
	masterKey := []byte("a master key with enough entropy")
	cid := types.CID{1, 2, 3}

	key, err := deriveKey(masterKey, cid)
	require.NoError(t, err)

	aead, err := chacha20poly1305.New(key)
	require.NoError(t, err)

	nonce := make([]byte, aead.NonceSize())
	_, err = rand.Read(nonce)
	require.NoError(t, err)

	plaintext := []byte("legacy record payload")
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)
	onDisk := append(nonce, ciphertext...)

	got := decryptOrRaw(masterKey, cid, true, onDisk)
	assert.Equal(t, plaintext, got)
}

func TestDecryptOrRawFallsBackToRawOnBadCiphertext(t *testing.T) {
	masterKey := []byte("a master key with enough entropy")
	cid := types.CID{4, 5, 6}
	junk := []byte("not valid ciphertext at all, just plaintext bytes")

	got := decryptOrRaw(masterKey, cid, true, junk)
	assert.Equal(t, junk, got)
}

func TestDecryptOrRawPassesThroughWithoutMasterKey(t *testing.T) {
	data := []byte("raw bytes")
	got := decryptOrRaw(nil, types.CID{1}, true, data)
	assert.Equal(t, data, got)
}

func TestDecryptOrRawPassesThroughWithoutCID(t *testing.T) {
	masterKey := []byte("a master key with enough entropy")
	data := []byte("raw bytes")
	got := decryptOrRaw(masterKey, types.CID{}, false, data)
	assert.Equal(t, data, got)
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	masterKey := []byte("a master key with enough entropy")
	cid := types.CID{7, 7, 7}

	k1, err := deriveKey(masterKey, cid)
	require.NoError(t, err)
	k2, err := deriveKey(masterKey, cid)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	k3, err := deriveKey(masterKey, types.CID{8, 8, 8})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}
