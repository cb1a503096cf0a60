package payment

import (
	"context"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirvine/saorsa-node/internal/saorsaerr"
	"github.com/dirvine/saorsa-node/internal/types"
)

type alwaysValidQuotes struct{}

func (alwaysValidQuotes) VerifyQuote([32]byte, []byte) error { return nil }

type stubEVM struct {
	err     error
	gotOwed *[][32]byte
}

func (s stubEVM) VerifyDataPayment(_ context.Context, _ string, ownedQuoteHashes [][32]byte, _ [32]byte) error {
	if s.gotOwed != nil {
		*s.gotOwed = ownedQuoteHashes
	}
	return s.err
}

func encodeProof(t *testing.T, quotes []PeerQuote) []byte {
	t.Helper()
	b, err := cbor.Marshal(ProofOfPayment{PeerQuotes: quotes})
	require.NoError(t, err)
	return b
}

func validProof(t *testing.T) []byte {
	return encodeProof(t, []PeerQuote{{PeerID: [32]byte{1}, SignedQuote: []byte("quote-1")}})
}

func TestVerifyPaymentVerifiedThenCached(t *testing.T) {
	v, err := New(Config{EVM: EVMConfig{Enabled: true, Network: "test"}, CacheCapacity: 10}, alwaysValidQuotes{}, stubEVM{})
	require.NoError(t, err)

	cid := types.CID{1}
	status, err := v.VerifyPayment(context.Background(), cid, validProof(t))
	require.NoError(t, err)
	assert.Equal(t, PaymentVerified, status)
	assert.Equal(t, 1, v.CacheLen())

	status, err = v.VerifyPayment(context.Background(), cid, nil)
	require.NoError(t, err)
	assert.Equal(t, CachedAsVerified, status)
}

func TestVerifyPaymentMissingProof(t *testing.T) {
	v, err := New(DefaultConfig(), alwaysValidQuotes{}, stubEVM{})
	require.NoError(t, err)

	_, err = v.VerifyPayment(context.Background(), types.CID{2}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, saorsaerr.KindOf(saorsaerr.Payment))
	assert.Contains(t, err.Error(), "payment required")
}

func TestVerifyPaymentEmptyQuotesRejectedEvenWhenEVMDisabled(t *testing.T) {
	// Resolved divergence from original_source: spec.md's literal step
	// ordering rejects empty-quote proofs unconditionally, before the
	// EVM-enabled check, so this must fail even with EVM disabled.
	v, err := New(Config{EVM: EVMConfig{Enabled: false}, CacheCapacity: 10}, alwaysValidQuotes{}, nil)
	require.NoError(t, err)

	proof := encodeProof(t, nil)
	_, err = v.VerifyPayment(context.Background(), types.CID{3}, proof)
	require.Error(t, err)
	assert.ErrorIs(t, err, saorsaerr.KindOf(saorsaerr.Payment))
}

func TestVerifyPaymentAcceptsWhenEVMDisabledWithNonEmptyQuotes(t *testing.T) {
	v, err := New(Config{EVM: EVMConfig{Enabled: false}, CacheCapacity: 10}, alwaysValidQuotes{}, nil)
	require.NoError(t, err)

	status, err := v.VerifyPayment(context.Background(), types.CID{4}, validProof(t))
	require.NoError(t, err)
	assert.Equal(t, PaymentVerified, status)
}

func TestVerifyPaymentOnChainRejection(t *testing.T) {
	v, err := New(Config{EVM: EVMConfig{Enabled: true, Network: "test"}, CacheCapacity: 10}, alwaysValidQuotes{}, stubEVM{err: ErrPaymentInvalid})
	require.NoError(t, err)

	_, err = v.VerifyPayment(context.Background(), types.CID{5}, validProof(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, saorsaerr.KindOf(saorsaerr.Payment))
}

func TestVerifyPaymentMalformedProof(t *testing.T) {
	v, err := New(DefaultConfig(), alwaysValidQuotes{}, stubEVM{})
	require.NoError(t, err)

	_, err = v.VerifyPayment(context.Background(), types.CID{6}, []byte{0xff, 0xff, 0xff})
	require.Error(t, err)
	assert.ErrorIs(t, err, saorsaerr.KindOf(saorsaerr.Payment))
}

func TestVerifyPaymentSubmitsEmptyOwnedQuoteHashes(t *testing.T) {
	// We are verifying someone else's payment, not claiming one
	// ourselves, so the owned-quote-hash set submitted to the chain must
	// always be empty, per spec.md step 7.
	var gotOwed [][32]byte
	v, err := New(Config{EVM: EVMConfig{Enabled: true, Network: "test"}, CacheCapacity: 10}, alwaysValidQuotes{}, stubEVM{gotOwed: &gotOwed})
	require.NoError(t, err)

	_, err = v.VerifyPayment(context.Background(), types.CID{8}, validProof(t))
	require.NoError(t, err)
	assert.Empty(t, gotOwed)
}

func TestCheckPaymentRequired(t *testing.T) {
	v, err := New(DefaultConfig(), alwaysValidQuotes{}, stubEVM{})
	require.NoError(t, err)

	cid := types.CID{7}
	assert.True(t, v.CheckPaymentRequired(cid))

	_, err = v.VerifyPayment(context.Background(), cid, validProof(t))
	require.NoError(t, err)
	assert.False(t, v.CheckPaymentRequired(cid))
}
