// Package saorsaerr defines the error taxonomy shared across saorsa-node's
// subsystems. Every fallible operation in the core returns either nil or an
// *Error carrying one of the fixed Kind values below, so callers can branch
// on errors.Is against a sentinel instead of parsing messages.
package saorsaerr

import (
	"errors"
	"fmt"
)

// Kind classifies the cause of a failure. Kinds are not Go types; they are a
// closed set of sentinel errors that every *Error wraps exactly one of.
type Kind string

const (
	// Network covers DHT, legacy transport, release-feed, or EVM RPC failure.
	Network Kind = "network"
	// Serialization covers record encode/decode failure.
	Serialization Kind = "serialization"
	// Crypto covers signature verification failure, an unconfigured release
	// key, or a malformed signature. Never implicitly recovered.
	Crypto Kind = "crypto"
	// Payment covers missing proof, malformed proof, invalid quote
	// signature, empty quotes, on-chain rejection, or RPC wrapping.
	Payment Kind = "payment"
	// Migration covers a missing/non-directory legacy root, unreadable
	// files, or key-derivation failure at the structural level.
	Migration Kind = "migration"
	// Config covers a file read or parse failure, startup only.
	Config Kind = "config"
	// IO covers generic filesystem failures.
	IO Kind = "io"
)

// sentinels lets callers do errors.Is(err, saorsaerr.KindOf(saorsaerr.Network))
// without constructing an *Error by hand.
var sentinels = map[Kind]error{
	Network:       errors.New("network"),
	Serialization: errors.New("serialization"),
	Crypto:        errors.New("crypto"),
	Payment:       errors.New("payment"),
	Migration:     errors.New("migration"),
	Config:        errors.New("config"),
	IO:            errors.New("io"),
}

// Error is the concrete error type returned by every saorsa-node subsystem.
// It carries a Kind, a human-readable message, and an optional wrapped
// cause. Its Is method matches the Kind's sentinel, so
// errors.Is(err, KindOf(Network)) works regardless of the message or cause.
type Error struct {
	Cause   error
	Kind    Kind
	Message string
}

// New constructs an *Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error of the given kind wrapping cause. If cause is
// nil, Wrap behaves like New.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Error implements the error interface, rendering "<kind>: <message>: <cause>"
// or "<kind>: <message>" when Cause is nil.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause so errors.Is/errors.As see through this
// error to whatever produced it.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's Kind, so
// errors.Is(err, saorsaerr.KindOf(saorsaerr.Payment)) works without
// type-asserting to *Error.
func (e *Error) Is(target error) bool {
	sentinel, ok := sentinels[e.Kind]
	return ok && target == sentinel
}

// KindOf returns the sentinel error for kind, for use with errors.Is at
// call sites that don't want to import the Error type directly.
func KindOf(kind Kind) error {
	return sentinels[kind]
}
