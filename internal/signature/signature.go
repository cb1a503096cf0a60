// Package signature implements the signature verifier (C8): FIPS-204
// ML-DSA-65 verification of release binaries under a fixed
// domain-separation context, guarding against cross-protocol signature
// reuse.
package signature

import (
	"crypto/rand"
	"os"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"

	"github.com/dirvine/saorsa-node/internal/saorsaerr"
)

// SigningContext domain-separates release signatures from any other use
// of an ML-DSA-65 key.
var SigningContext = []byte("saorsa-node-release-v1")

// SignatureSize and PublicKeySize are ML-DSA-65's fixed FIPS-204 sizes.
const (
	SignatureSize = mldsa65.SignatureSize
	PublicKeySize = mldsa65.PublicKeySize
)

// releaseSigningKey is the embedded ML-DSA-65 release public key. Empty
// until a production key is embedded; VerifyReleaseBinary refuses to
// silently accept in that case.
var releaseSigningKey []byte

// SetReleaseSigningKey installs the embedded release public key used by
// VerifyReleaseBinary. Intended to be called once at startup with a
// build-time-embedded key.
func SetReleaseSigningKey(key []byte) {
	releaseSigningKey = key
}

// VerifyReleaseBinary verifies signature over the file at binaryPath
// against the embedded release signing key. Fails with a Crypto error if
// no release key has been configured, rather than silently accepting.
func VerifyReleaseBinary(binaryPath string, sig []byte) error {
	if len(releaseSigningKey) == 0 {
		return saorsaerr.New(saorsaerr.Crypto, "release signing key not configured")
	}
	return VerifyBinaryWithKey(binaryPath, sig, releaseSigningKey)
}

// VerifyBinaryWithKey verifies signature over the file at binaryPath
// against an explicitly supplied public key. Useful for tests and for
// externally-supplied keys.
func VerifyBinaryWithKey(binaryPath string, sig []byte, publicKey []byte) error {
	content, err := os.ReadFile(binaryPath)
	if err != nil {
		return saorsaerr.Wrap(saorsaerr.IO, "read binary for signature verification", err)
	}
	return VerifyBytesWithKey(content, sig, publicKey)
}

// VerifyBytesWithKey verifies sig over content against publicKey, rejecting
// any signature whose length is not exactly SignatureSize.
func VerifyBytesWithKey(content []byte, sig []byte, publicKey []byte) error {
	if len(sig) != SignatureSize {
		return saorsaerr.New(saorsaerr.Crypto, "invalid signature size")
	}

	var pk mldsa65.PublicKey
	if err := pk.UnmarshalBinary(publicKey); err != nil {
		return saorsaerr.Wrap(saorsaerr.Crypto, "invalid release public key", err)
	}

	if !mldsa65.Verify(&pk, content, SigningContext, sig) {
		return saorsaerr.New(saorsaerr.Crypto, "signature verification failed")
	}
	return nil
}

// VerifyFromSigFile reads sigPath's contents as a detached signature and
// verifies it over binaryPath using the embedded release key.
func VerifyFromSigFile(binaryPath, sigPath string) error {
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return saorsaerr.Wrap(saorsaerr.IO, "read detached signature file", err)
	}
	return VerifyReleaseBinary(binaryPath, sig)
}

// VerifyFromSigFileWithKey is VerifyFromSigFile against an explicit key
// rather than the embedded one.
func VerifyFromSigFileWithKey(binaryPath, sigPath string, publicKey []byte) error {
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return saorsaerr.Wrap(saorsaerr.IO, "read detached signature file", err)
	}
	return VerifyBinaryWithKey(binaryPath, sig, publicKey)
}

// Keypair is a generated ML-DSA-65 release signing keypair, the
// supplemented keygen-equivalent helper mirroring src/bin/keygen.rs.
type Keypair struct {
	PublicKey  []byte
	PrivateKey []byte
}

// GenerateReleaseKeypair generates a fresh ML-DSA-65 keypair suitable for
// signing releases.
func GenerateReleaseKeypair() (Keypair, error) {
	pub, priv, err := mldsa65.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, saorsaerr.Wrap(saorsaerr.Crypto, "generate release keypair", err)
	}
	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return Keypair{}, saorsaerr.Wrap(saorsaerr.Crypto, "marshal public key", err)
	}
	privBytes, err := priv.MarshalBinary()
	if err != nil {
		return Keypair{}, saorsaerr.Wrap(saorsaerr.Crypto, "marshal private key", err)
	}
	return Keypair{PublicKey: pubBytes, PrivateKey: privBytes}, nil
}

// SignRelease signs content with priv under SigningContext, for use by the
// release-signing tool.
func SignRelease(priv []byte, content []byte) ([]byte, error) {
	var sk mldsa65.PrivateKey
	if err := sk.UnmarshalBinary(priv); err != nil {
		return nil, saorsaerr.Wrap(saorsaerr.Crypto, "invalid release private key", err)
	}
	sig := make([]byte, SignatureSize)
	if err := mldsa65.SignTo(&sk, content, SigningContext, false, sig); err != nil {
		return nil, saorsaerr.Wrap(saorsaerr.Crypto, "sign release content", err)
	}
	return sig, nil
}
