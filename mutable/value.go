// Package mutable implements a copy-on-write overlay over immutable
// weft arrays and maps. MutableArray and MutableDict stage edits (set,
// append, insert, remove, resize) without rewriting the source document,
// and track which slots have changed. weft/encode's Encoder.WriteMutable
// walks the overlay directly, so untouched slots can still ride
// weft/encode's base-amendment support (SetBase/ReuseBaseStrings) while
// edited slots are written fresh.
package mutable

import "github.com/arnelofgren/weft"

// Value is a slot's current content: either a plain immutable weft.Value
// (a scalar, or an array/map subtree nobody has asked to edit yet) or a
// live *MutableArray / *MutableDict for a slot whose container has been
// materialized for editing. Go has no interface letting "get" and "get
// mutable" share a return type the way a class hierarchy would, so Value
// is the explicit tagged union that plays the same role.
type Value struct {
	imm  weft.Value
	arr  *MutableArray
	dict *MutableDict
}

// immValue wraps a plain immutable value.
func immValue(v weft.Value) Value { return Value{imm: v} }

// Kind reports v's type, consulting the live mutable child if one has been
// materialized for this slot.
func (v Value) Kind() weft.Kind {
	switch {
	case v.arr != nil:
		return weft.KindArray
	case v.dict != nil:
		return weft.KindMap
	default:
		return v.imm.Kind()
	}
}

// IsUndefined reports whether v is a missing-lookup sentinel.
func (v Value) IsUndefined() bool { return v.Kind() == weft.KindUndefined }

// Immutable returns v's content as a plain weft.Value, and false if v is
// currently a live mutable array or dict (whose edits an immutable
// snapshot can't reflect).
func (v Value) Immutable() (weft.Value, bool) {
	if v.arr != nil || v.dict != nil {
		return weft.Value{}, false
	}
	return v.imm, true
}

// MutableArray returns v's content as a *MutableArray, or nil if v is not
// a materialized mutable array (use GetMutableArray on the parent
// container to materialize one).
func (v Value) MutableArray() *MutableArray { return v.arr }

// MutableDict returns v's content as a *MutableDict, or nil if v is not a
// materialized mutable dict.
func (v Value) MutableDict() *MutableDict { return v.dict }

// The scalar accessors below delegate to the wrapped immutable value; a
// slot holding a live mutable container has no scalar reading, so they
// report the same zero value an out-of-range or wrong-kind weft.Value
// accessor would.

func (v Value) AsBool() bool {
	if imm, ok := v.Immutable(); ok {
		return imm.AsBool()
	}
	return true // a live array/dict is always "truthy"
}

func (v Value) AsInt64() int64 {
	if imm, ok := v.Immutable(); ok {
		return imm.AsInt64()
	}
	return 0
}

func (v Value) AsFloat64() float64 {
	if imm, ok := v.Immutable(); ok {
		return imm.AsFloat64()
	}
	return 0
}

func (v Value) AsString() string {
	if imm, ok := v.Immutable(); ok {
		return imm.AsString()
	}
	return ""
}
