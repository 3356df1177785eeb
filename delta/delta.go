// Package delta computes and applies JSON-form patches between weft
// values: Create walks two value trees and emits a textual patch, Apply
// (or EncodeApplying, for callers already holding an open Encoder) walks
// an old value and a patch together to reconstruct the new one.
//
// The patch format mirrors the documents' own shape rather than a flat
// operation list: at each differing map field the patch holds
// {"+": newValue} for an insert, {"-": oldValue} for a delete, or, for
// any field whose old and new values aren't both maps, the bare new
// value as a shorthand replacement. Two maps that differ recurse the
// same way at every nested field; anything else (scalars, arrays, a map
// replaced by a non-map or vice versa) is replaced wholesale.
package delta

import (
	"fmt"

	"github.com/arnelofgren/weft"
	"github.com/arnelofgren/weft/encode"
	"github.com/arnelofgren/weft/jsonio"
)

const (
	insertSigil = "+"
	deleteSigil = "-"
)

// Create returns a JSON-form patch describing how to turn old into new.
func Create(old, new weft.Value) ([]byte, error) {
	enc := encode.New()
	if err := buildDiff(enc, old, new); err != nil {
		return nil, fmt.Errorf("delta: %w", err)
	}
	doc, err := enc.FinishDoc()
	if err != nil {
		return nil, fmt.Errorf("delta: %w", err)
	}
	defer doc.Close()
	return []byte(doc.Root().ToJSON()), nil
}

// Apply reconstructs new's serialized bytes by walking old against patch.
// Neither old nor patch is mutated.
func Apply(old weft.Value, patch []byte) ([]byte, error) {
	enc := encode.New()
	if err := EncodeApplying(enc, old, patch); err != nil {
		return nil, err
	}
	data, err := enc.Finish()
	if err != nil {
		return nil, fmt.Errorf("delta: %w", err)
	}
	return data, nil
}

// EncodeApplying reconstructs new's value directly into enc, for callers
// building a larger document that embeds the result rather than wanting
// a standalone byte slice.
func EncodeApplying(enc *encode.Encoder, old weft.Value, patch []byte) error {
	patchDoc, err := jsonio.FromJSON(patch)
	if err != nil {
		return fmt.Errorf("delta: %w", err)
	}
	defer patchDoc.Close()
	if err := applyInto(enc, old, patchDoc.Root()); err != nil {
		return fmt.Errorf("delta: %w", err)
	}
	if err := enc.Err(); err != nil {
		return fmt.Errorf("delta: %w", err)
	}
	return nil
}

func buildDiff(enc *encode.Encoder, old, new weft.Value) error {
	if old.Kind() == weft.KindMap && new.Kind() == weft.KindMap {
		return buildMapDiff(enc, old.AsMap(), new.AsMap())
	}
	enc.WriteValue(new)
	return nil
}

func buildMapDiff(enc *encode.Encoder, om, nm weft.Map) error {
	enc.BeginDictionary(nm.Len())
	seen := make(map[string]bool, om.Len())
	var ferr error
	om.Range(func(key string, oldV weft.Value) bool {
		seen[key] = true
		newV := nm.Get(key)
		if newV.IsUndefined() {
			enc.WriteKey(key)
			writeOp(enc, deleteSigil, oldV)
			return true
		}
		if weft.Equal(oldV, newV) {
			return true
		}
		enc.WriteKey(key)
		if err := buildDiff(enc, oldV, newV); err != nil {
			ferr = err
			return false
		}
		return true
	})
	if ferr != nil {
		return ferr
	}
	nm.Range(func(key string, newV weft.Value) bool {
		if seen[key] {
			return true
		}
		enc.WriteKey(key)
		writeOp(enc, insertSigil, newV)
		return true
	})
	enc.EndDictionary()
	return nil
}

func writeOp(enc *encode.Encoder, sigil string, v weft.Value) {
	enc.BeginDictionary(1)
	enc.WriteKey(sigil)
	enc.WriteValue(v)
	enc.EndDictionary()
}

func applyInto(enc *encode.Encoder, old, patch weft.Value) error {
	if old.Kind() == weft.KindMap && patch.Kind() == weft.KindMap {
		return applyMapDiff(enc, old.AsMap(), patch.AsMap())
	}
	enc.WriteValue(patch)
	return nil
}

func applyMapDiff(enc *encode.Encoder, om, pm weft.Map) error {
	enc.BeginDictionary(om.Len())
	seen := make(map[string]bool, om.Len())
	var ferr error
	om.Range(func(key string, oldV weft.Value) bool {
		seen[key] = true
		field := pm.Get(key)
		switch {
		case field.IsUndefined():
			enc.WriteKey(key)
			enc.WriteValue(oldV)
		case isDeleteOp(field):
			// key removed, write nothing
		case isInsertOp(field):
			enc.WriteKey(key)
			enc.WriteValue(insertOpValue(field))
		default:
			enc.WriteKey(key)
			if err := applyInto(enc, oldV, field); err != nil {
				ferr = err
				return false
			}
		}
		return true
	})
	if ferr != nil {
		return ferr
	}
	pm.Range(func(key string, field weft.Value) bool {
		if seen[key] {
			return true
		}
		enc.WriteKey(key)
		if isInsertOp(field) {
			enc.WriteValue(insertOpValue(field))
		} else {
			enc.WriteValue(field)
		}
		return true
	})
	enc.EndDictionary()
	return nil
}

func isDeleteOp(v weft.Value) bool { return isSigilOp(v, deleteSigil) }
func isInsertOp(v weft.Value) bool { return isSigilOp(v, insertSigil) }

func isSigilOp(v weft.Value, sigil string) bool {
	if v.Kind() != weft.KindMap {
		return false
	}
	m := v.AsMap()
	return m.Len() == 1 && !m.Get(sigil).IsUndefined()
}

func insertOpValue(v weft.Value) weft.Value { return v.AsMap().Get(insertSigil) }
