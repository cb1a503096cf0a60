package primary

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/dirvine/saorsa-node/internal/saorsaerr"
	"github.com/dirvine/saorsa-node/internal/types"
)

// wireScratchpad is the self-describing on-the-wire encoding of a
// Scratchpad record, per §4.2 ("serialize with a self-describing binary
// encoding").
type wireScratchpad struct {
	Owner       types.OwnerID `cbor:"owner"`
	ContentType uint64        `cbor:"content_type"`
	Payload     []byte        `cbor:"payload"`
	Counter     uint64        `cbor:"counter"`
	Signature   []byte        `cbor:"signature"`
}

type wirePointer struct {
	Owner     types.OwnerID `cbor:"owner"`
	Target    types.CID     `cbor:"target"`
	Signature []byte        `cbor:"signature"`
	Counter   uint64        `cbor:"counter"`
}

type wireGraphEntry struct {
	Owner   types.OwnerID `cbor:"owner"`
	Parents []types.CID   `cbor:"parents"`
	Content []byte        `cbor:"content"`
}

func encodeScratchpad(s types.Scratchpad) ([]byte, error) {
	b, err := cbor.Marshal(wireScratchpad{
		Owner:       s.Owner,
		ContentType: s.ContentType,
		Payload:     s.Payload,
		Counter:     s.Counter,
		Signature:   s.Signature,
	})
	if err != nil {
		return nil, saorsaerr.Wrap(saorsaerr.Serialization, "encode scratchpad", err)
	}
	return b, nil
}

func decodeScratchpad(b []byte) (types.Scratchpad, error) {
	var w wireScratchpad
	if err := cbor.Unmarshal(b, &w); err != nil {
		return types.Scratchpad{}, saorsaerr.Wrap(saorsaerr.Serialization, "decode scratchpad", err)
	}
	return types.Scratchpad{
		Owner:       w.Owner,
		ContentType: w.ContentType,
		Payload:     w.Payload,
		Counter:     w.Counter,
		Signature:   w.Signature,
	}, nil
}

func encodePointer(p types.Pointer) ([]byte, error) {
	b, err := cbor.Marshal(wirePointer{
		Owner:     p.Owner,
		Target:    p.Target,
		Signature: p.Signature,
		Counter:   p.Counter,
	})
	if err != nil {
		return nil, saorsaerr.Wrap(saorsaerr.Serialization, "encode pointer", err)
	}
	return b, nil
}

func decodePointer(b []byte) (types.Pointer, error) {
	var w wirePointer
	if err := cbor.Unmarshal(b, &w); err != nil {
		return types.Pointer{}, saorsaerr.Wrap(saorsaerr.Serialization, "decode pointer", err)
	}
	return types.Pointer{
		Owner:     w.Owner,
		Target:    w.Target,
		Signature: w.Signature,
		Counter:   w.Counter,
	}, nil
}

func encodeGraphEntry(g types.GraphEntry) ([]byte, error) {
	b, err := cbor.Marshal(wireGraphEntry{
		Owner:   g.Owner,
		Parents: g.Parents,
		Content: g.Content,
	})
	if err != nil {
		return nil, saorsaerr.Wrap(saorsaerr.Serialization, "encode graph entry", err)
	}
	return b, nil
}

func decodeGraphEntry(b []byte) (types.GraphEntry, error) {
	var w wireGraphEntry
	if err := cbor.Unmarshal(b, &w); err != nil {
		return types.GraphEntry{}, saorsaerr.Wrap(saorsaerr.Serialization, "decode graph entry", err)
	}
	return types.GraphEntry{
		Owner:   w.Owner,
		Parents: w.Parents,
		Content: w.Content,
	}, nil
}
