// Package weft implements a binary document format for schema-free
// structured data (nulls, booleans, integers, floats, strings, blobs,
// arrays, and maps) whose serialized form is directly navigable without a
// parse step. Readers decode values in place from an immutable byte range;
// map keys may be interned as small integers via an out-of-band shared-key
// table; documents can cite data in a neighboring "extern" byte range
// through relative pointers; and a mutable overlay (package mutable)
// supports edits without rewriting the whole document.
//
// # Reading
//
// A Doc owns a byte range and exposes its root Value:
//
//	doc, err := weft.FromData(bytes, weft.Untrusted, nil, nil)
//	if err != nil {
//	    return err
//	}
//	root := doc.Root()
//	name := root.AsMap().Get("name").AsString()
//
// # Writing
//
// See package encode for the streaming builder that produces the bytes a
// Doc reads back.
//
// # Zero-copy navigation
//
// A Value is a position inside an immutable byte range, identified by the
// byte range itself plus an offset: never copied, never heap-wrapped.
// Values do not carry a pointer back to their owning Doc (see the package
// doc comment on avoiding per-Value back-pointers); when a Value's owning
// Doc or SharedKeys table is needed (e.g. to decode an interned map key, or
// to resolve an extern pointer), it is recovered through the process-wide
// Scope registry. See Containing.
package weft

import (
	"fmt"

	"github.com/arnelofgren/weft/internal/wire"
	"github.com/arnelofgren/weft/sharedkeys"
)

// Trust indicates whether the caller has already verified data's integrity
// (e.g. because it was produced by this package's own encoder and never
// left trusted storage) and decoding may skip validation, or whether the
// bytes came from an untrusted source and must be walked structurally
// before any Value is handed back.
type Trust int

const (
	// Untrusted decoding walks the entire value tree, checking every
	// header, pointer and container bound, before returning a Doc.
	Untrusted Trust = iota
	// Trusted decoding only parses the trailer; malformed data deeper in
	// the tree surfaces later, as a zero/undefined Value from whichever
	// accessor first reaches it.
	Trusted
)

// Doc is a decoded document: a Scope over the backing bytes plus its root
// Value.
type Doc struct {
	scope *Scope
	root  Value
}

// FromData decodes data (which must end with a 2-byte trailer pointing at
// the root value) and registers a new Scope over it. sharedKeys and extern
// may be nil. Under Untrusted trust, the full tree is validated before
// FromData returns; under Trusted, only the trailer is parsed.
func FromData(data []byte, trust Trust, sharedKeys *sharedkeys.Table, extern []byte) (*Doc, error) {
	rootOffset, err := wire.DecodeTrailer(data)
	if err != nil {
		return nil, fmt.Errorf("weft: %w", err)
	}
	scope := NewScope(data, sharedKeys, extern)
	root := Value{buf: data, off: rootOffset}
	if trust == Untrusted {
		if err := validateTree(root); err != nil {
			scope.Close()
			return nil, fmt.Errorf("weft: %w", err)
		}
	}
	return &Doc{scope: scope, root: root}, nil
}

// FromTrustedData is a convenience wrapper for FromData with Trusted trust.
func FromTrustedData(data []byte, sharedKeys *sharedkeys.Table, extern []byte) (*Doc, error) {
	if len(data) < wire.TrailerSize {
		return nil, ErrTrustedDataRejected
	}
	return FromData(data, Trusted, sharedKeys, extern)
}

// Root returns the document's root Value.
func (d *Doc) Root() Value { return d.root }

// Scope returns the Scope backing this document.
func (d *Doc) Scope() *Scope { return d.scope }

// Close deregisters the document's Scope. The backing byte slice must not
// be reused for another Scope's range until Close returns.
func (d *Doc) Close() { d.scope.Close() }
