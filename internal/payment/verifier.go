// Package payment implements the payment verifier (C4): a verified-address
// cache probe followed by on-chain verification of an embedded
// proof-of-payment for writes the cache hasn't already seen.
package payment

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/dirvine/saorsa-node/internal/cache"
	"github.com/dirvine/saorsa-node/internal/saorsaerr"
	"github.com/dirvine/saorsa-node/internal/types"
)

// Status is the result of a payment verification attempt. Two variants
// are "free to store" (CachedAsVerified, PaymentVerified); PaymentRequired
// is never returned as a value — it is delivered as an error, per §4.4.
type Status int

const (
	// PaymentVerified means on-chain verification of a fresh proof
	// succeeded and the address was just inserted into the cache.
	PaymentVerified Status = iota
	// CachedAsVerified means the address was already in the verified
	// cache; no on-chain call was made.
	CachedAsVerified
)

// String renders a Status for logging.
func (s Status) String() string {
	if s == CachedAsVerified {
		return "cached_as_verified"
	}
	return "payment_verified"
}

// CanStore reports whether a Status permits storing the data for free.
// Both defined Status values do; this exists so call sites read as
// status.CanStore() rather than a tautological true/true switch.
func (s Status) CanStore() bool {
	return true
}

// ErrPaymentInvalid is returned by an EVMVerifier when the chain rejects
// the submitted digest outright (as opposed to an RPC transport failure).
var ErrPaymentInvalid = errors.New("payment invalid")

// QuoteVerifier checks that a peer quote's signature actually claims the
// peer id it's filed under. The quote-signing scheme itself is an
// external capability (peers sign their own quotes); this interface is
// the seam payment verification is built against.
type QuoteVerifier interface {
	VerifyQuote(peerID [32]byte, quote []byte) error
}

// EVMVerifier is the externally-consumed payment-vault capability (§6):
// submit a digest and the set of owned quote hashes to the configured EVM
// network and learn whether the chain accepts it.
type EVMVerifier interface {
	VerifyDataPayment(ctx context.Context, network string, ownedQuoteHashes [][32]byte, digest [32]byte) error
}

// EVMConfig configures on-chain verification.
type EVMConfig struct {
	Network string
	Enabled bool
}

// Config configures the payment Verifier.
type Config struct {
	EVM           EVMConfig
	CacheCapacity int
}

// DefaultConfig mirrors original_source/src/payment/verifier.rs's
// PaymentVerifierConfig::default(): EVM enabled against Arbitrum One, a
// 100,000-entry cache.
func DefaultConfig() Config {
	return Config{EVM: EVMConfig{Network: "arbitrum-one", Enabled: true}, CacheCapacity: cache.DefaultCapacity}
}

// Verifier is the payment verifier (C4).
type Verifier struct {
	cache  *cache.VerifiedCache
	quotes QuoteVerifier
	evm    EVMVerifier
	config Config
}

// New constructs a Verifier. quotes and evm may be nil only when
// config.EVM.Enabled is false and callers never submit a non-empty-quote
// proof; both are required for a fully functional verifier.
func New(config Config, quotes QuoteVerifier, evm EVMVerifier) (*Verifier, error) {
	c, err := cache.WithCapacity(config.CacheCapacity)
	if err != nil {
		return nil, err
	}
	return &Verifier{cache: c, quotes: quotes, evm: evm, config: config}, nil
}

// CheckPaymentRequired reports whether cid already has a verified payment
// cached. It does not consult the chain.
func (v *Verifier) CheckPaymentRequired(cid types.CID) bool {
	return !v.cache.Contains(cid)
}

// VerifyPayment runs §4.4's eight-step algorithm, in order:
//  1. cache hit -> CachedAsVerified.
//  2. empty/nil proof -> Payment error.
//  3. deserialize the proof.
//  4. verify every quote's signature against its claimed peer.
//  5. compute the proof digest; reject empty-quote proofs.
//  6. if EVM verification is disabled, accept and fall through to 8.
//  7. submit to the payment-vault contract.
//  8. insert into the cache; return PaymentVerified.
//
// Step 5's empty-quote rejection is unconditional — including when EVM
// verification is disabled in step 6 — per spec.md's literal ordering.
// See DESIGN.md's C4 entry for the point where this diverges from
// original_source's actual (EVM-enabled-gated) behavior.
func (v *Verifier) VerifyPayment(ctx context.Context, cid types.CID, proof []byte) (Status, error) {
	// Step 1.
	if v.cache.Contains(cid) {
		return CachedAsVerified, nil
	}

	// Step 2.
	if len(proof) == 0 {
		return 0, saorsaerr.New(saorsaerr.Payment, fmt.Sprintf("payment required for new data %x", cid))
	}

	// Step 3.
	parsed, err := decodeProof(proof)
	if err != nil {
		return 0, err
	}

	// Step 4.
	if err := v.verifyQuotes(parsed.PeerQuotes); err != nil {
		return 0, err
	}

	// Step 5.
	digest := proofDigest(parsed.PeerQuotes)
	if len(parsed.PeerQuotes) == 0 {
		return 0, saorsaerr.New(saorsaerr.Payment, "empty payment proof")
	}

	// Step 6.
	if v.config.EVM.Enabled {
		// Step 7. We are verifying someone else's payment, not claiming
		// one ourselves, so the owned-quote-hash set submitted alongside
		// the digest is always empty.
		if v.evm == nil {
			return 0, saorsaerr.New(saorsaerr.Payment, "evm verifier not configured")
		}
		if err := v.evm.VerifyDataPayment(ctx, v.config.EVM.Network, [][32]byte{}, digest); err != nil {
			if errors.Is(err, ErrPaymentInvalid) {
				return 0, saorsaerr.Wrap(saorsaerr.Payment, "payment rejected on-chain", err)
			}
			return 0, saorsaerr.Wrap(saorsaerr.Payment, "on-chain verification failed", err)
		}
	}

	// Step 8. Insertion happens only after every fallible step above has
	// already succeeded and before this function returns, so a cancelled
	// caller cannot observe a cache entry without a verified payment
	// behind it (§9's cancellation design note).
	v.cache.Insert(cid)
	return PaymentVerified, nil
}

func (v *Verifier) verifyQuotes(quotes []PeerQuote) error {
	if v.quotes == nil {
		return nil
	}
	for _, q := range quotes {
		if err := v.quotes.VerifyQuote(q.PeerID, q.SignedQuote); err != nil {
			return saorsaerr.Wrap(saorsaerr.Payment, "invalid quote signature", err)
		}
	}
	return nil
}

// proofDigest computes a digest over the proof's quotes: SHA-256 of the
// concatenated peer ids and signed quotes, in order.
func proofDigest(quotes []PeerQuote) [32]byte {
	h := sha256.New()
	for _, q := range quotes {
		h.Write(q.PeerID[:])
		h.Write(q.SignedQuote)
	}
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// CacheStats exposes the verified-address cache's current statistics.
func (v *Verifier) CacheStats() cache.Stats {
	return v.cache.Stats()
}

// CacheLen returns the number of addresses currently cached as verified.
func (v *Verifier) CacheLen() int {
	return v.cache.Len()
}
