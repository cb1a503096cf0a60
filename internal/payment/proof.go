package payment

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/dirvine/saorsa-node/internal/saorsaerr"
)

// PeerQuote is one (peer_id, signed_quote) pair from a proof-of-payment
// blob, per §3's glossary entry for Proof-of-payment.
type PeerQuote struct {
	PeerID      [32]byte `cbor:"peer_id"`
	SignedQuote []byte   `cbor:"signed_quote"`
}

// ProofOfPayment is the opaque blob a write caller supplies, deserialized
// per §4.4 step 3 with a self-describing binary encoding (CBOR here; see
// DESIGN.md for why this is not the original's MessagePack).
type ProofOfPayment struct {
	PeerQuotes []PeerQuote `cbor:"peer_quotes"`
}

// decodeProof deserializes raw proof bytes. An empty or malformed blob
// fails with Payment, matching §4.4 step 2's "None or empty" rejection at
// the caller and step 3's deserialization step here.
func decodeProof(raw []byte) (ProofOfPayment, error) {
	var p ProofOfPayment
	if err := cbor.Unmarshal(raw, &p); err != nil {
		return ProofOfPayment{}, saorsaerr.Wrap(saorsaerr.Payment, "malformed proof of payment", err)
	}
	return p, nil
}
