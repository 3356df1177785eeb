package weft

import (
	"github.com/arnelofgren/weft/internal/wire"
)

// Kind identifies a Value's type.
type Kind int

const (
	// KindUndefined is the kind of the zero Value, and of any lookup that
	// misses (an out-of-range array index, an absent map key). It is
	// distinct from KindNull, matching the format's own null/undefined
	// split.
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindBlob
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBlob:
		return "blob"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// Value is a position inside an immutable byte range: buf is the full range
// (always exactly some Scope's Data(), see scope.go), off is the byte
// offset of this value's 2-byte header within it. Value is a small value
// type, copied freely, and intentionally carries no pointer back to its
// Scope (see the package doc comment).
//
// The zero Value reports KindUndefined and behaves like a missing lookup
// result everywhere.
type Value struct {
	buf []byte
	off int
}

// undefinedValue is the canonical zero Value, returned by misses.
var undefinedValue = Value{}

// ValueOffset returns v's byte offset within its backing range, for
// callers (such as encode.Encoder's base-amendment support) that need raw
// position accounting the normal navigation API deliberately hides.
func ValueOffset(v Value) int { return v.off }

func (v Value) header() (wire.Header, bool) {
	if v.buf == nil || v.off < 0 || v.off+2 > len(v.buf) {
		return wire.Header{}, false
	}
	h, err := wire.DecodeHeader(v.buf[v.off:])
	if err != nil || h.IsPointer {
		return wire.Header{}, false
	}
	return h, true
}

// Kind returns v's type. A Value built from malformed bytes (only possible
// via FromTrustedData, which skips validation) reports KindUndefined rather
// than panicking.
func (v Value) Kind() Kind {
	h, ok := v.header()
	if !ok {
		return KindUndefined
	}
	switch h.Tag {
	case wire.TagShortInt, wire.TagInt:
		return KindInt
	case wire.TagFloat:
		return KindFloat
	case wire.TagSpecial:
		switch h.Payload & 0x0f {
		case wire.SpecialNull:
			return KindNull
		case wire.SpecialFalse, wire.SpecialTrue:
			return KindBool
		default:
			return KindUndefined
		}
	case wire.TagString:
		return KindString
	case wire.TagBlob:
		return KindBlob
	case wire.TagArray:
		return KindArray
	case wire.TagMap:
		return KindMap
	default:
		return KindUndefined
	}
}

// IsUndefined reports whether v is the missing-value sentinel.
func (v Value) IsUndefined() bool { return v.Kind() == KindUndefined }

// IsNull reports whether v is the JSON-null-equivalent value.
func (v Value) IsNull() bool { return v.Kind() == KindNull }

// AsBool coerces v to bool: numeric zero, null, undefined and false are
// false; everything else (including non-empty strings, arrays and maps) is
// true, matching the format's general truthiness rule rather than a strict
// type check.
func (v Value) AsBool() bool {
	switch v.Kind() {
	case KindUndefined, KindNull:
		return false
	case KindBool:
		h, _ := v.header()
		return h.Payload&0x0f == wire.SpecialTrue
	case KindInt:
		return v.AsInt64() != 0
	case KindFloat:
		return v.AsFloat64() != 0
	default:
		return true
	}
}

// AsInt64 returns v's integer value, or 0 if v is not numeric. Floats are
// truncated towards zero.
func (v Value) AsInt64() int64 {
	h, ok := v.header()
	if !ok {
		return 0
	}
	switch h.Tag {
	case wire.TagShortInt:
		return wire.DecodeShortInt(h.Payload)
	case wire.TagInt:
		ip := wire.DecodeIntPayload(h.Payload)
		n, err := wire.DecodeIntBytes(v.buf[v.off+2:], ip.ByteCount)
		if err != nil {
			return 0
		}
		if !ip.Signed {
			u, err := wire.DecodeUintBytes(v.buf[v.off+2:], ip.ByteCount)
			if err == nil {
				return int64(u)
			}
		}
		return n
	case wire.TagFloat:
		return int64(v.AsFloat64())
	default:
		return 0
	}
}

// IsUnsignedInt reports whether v is an integer that was encoded with the
// unsigned sign flag, for callers (such as encode.Encoder.WriteValue) that
// need to deep-copy a value and preserve the distinction.
func (v Value) IsUnsignedInt() bool {
	h, ok := v.header()
	if !ok || h.Tag != wire.TagInt {
		return false
	}
	return !wire.DecodeIntPayload(h.Payload).Signed
}

// AsUint64 returns v's integer value as unsigned, or 0 if v is not numeric.
func (v Value) AsUint64() uint64 {
	h, ok := v.header()
	if !ok || h.Tag != wire.TagInt || wire.DecodeIntPayload(h.Payload).Signed {
		return uint64(v.AsInt64())
	}
	ip := wire.DecodeIntPayload(h.Payload)
	u, err := wire.DecodeUintBytes(v.buf[v.off+2:], ip.ByteCount)
	if err != nil {
		return 0
	}
	return u
}

// IsSingleFloat reports whether v is a 4-byte (float32-precision) float
// cell rather than an 8-byte double, for callers that need to preserve the
// distinction across a deep copy.
func (v Value) IsSingleFloat() bool {
	h, ok := v.header()
	if !ok || h.Tag != wire.TagFloat {
		return false
	}
	return h.Payload&1 == 0
}

// AsFloat64 returns v's numeric value as a float64, or 0 if v is not
// numeric.
func (v Value) AsFloat64() float64 {
	h, ok := v.header()
	if !ok {
		return 0
	}
	switch h.Tag {
	case wire.TagShortInt:
		return float64(wire.DecodeShortInt(h.Payload))
	case wire.TagInt:
		return float64(v.AsInt64())
	case wire.TagFloat:
		f, err := wire.DecodeFloatPayload(h.Payload, v.buf[v.off+2:])
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// AsString returns v's string content, or "" if v is not a string.
func (v Value) AsString() string {
	b, ok := v.stringBytes()
	if !ok {
		return ""
	}
	return string(b)
}

func (v Value) stringBytes() ([]byte, bool) {
	h, ok := v.header()
	if !ok || h.Tag != wire.TagString {
		return nil, false
	}
	data, _, err := wire.DecodeLengthPrefixed(v.buf[v.off:], h.Payload)
	if err != nil {
		return nil, false
	}
	return data, true
}

// AsBlob returns v's raw bytes, or nil if v is not a blob.
func (v Value) AsBlob() []byte {
	h, ok := v.header()
	if !ok || h.Tag != wire.TagBlob {
		return nil
	}
	data, _, err := wire.DecodeLengthPrefixed(v.buf[v.off:], h.Payload)
	if err != nil {
		return nil
	}
	return data
}

// AsArray returns v viewed as an Array, or the zero (empty) Array if v is
// not an array.
func (v Value) AsArray() Array {
	h, ok := v.header()
	if !ok || h.Tag != wire.TagArray {
		return Array{}
	}
	ch, err := wire.DecodeContainerHeader(v.buf[v.off:], false)
	if err != nil {
		return Array{}
	}
	return Array{v: v, ch: ch}
}

// AsMap returns v viewed as a Map, or the zero (empty) Map if v is not a
// map.
func (v Value) AsMap() Map {
	h, ok := v.header()
	if !ok || h.Tag != wire.TagMap {
		return Map{}
	}
	ch, err := wire.DecodeContainerHeader(v.buf[v.off:], true)
	if err != nil {
		return Map{}
	}
	return Map{v: v, ch: ch}
}

// cellSize returns the total byte size of v's own cell (header plus any
// trailing payload or slot array), or -1 if v is malformed.
func (v Value) cellSize() int {
	if v.buf == nil || v.off < 0 || v.off+2 > len(v.buf) {
		return -1
	}
	n, err := wire.SizeOfCell(v.buf[v.off:])
	if err != nil {
		return -1
	}
	return n
}

// Equal reports whether a and b have the same kind and value. Arrays and
// maps compare element-wise and key/value-wise respectively; float and int
// values compare by numeric value across kinds (1 equals 1.0).
func Equal(a, b Value) bool {
	ak, bk := a.Kind(), b.Kind()
	if (ak == KindInt || ak == KindFloat) && (bk == KindInt || bk == KindFloat) {
		return a.AsFloat64() == b.AsFloat64()
	}
	if ak != bk {
		return false
	}
	switch ak {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return a.AsBool() == b.AsBool()
	case KindString:
		return a.AsString() == b.AsString()
	case KindBlob:
		return string(a.AsBlob()) == string(b.AsBlob())
	case KindArray:
		aa, ba := a.AsArray(), b.AsArray()
		if aa.Len() != ba.Len() {
			return false
		}
		for i := 0; i < aa.Len(); i++ {
			if !Equal(aa.Get(i), ba.Get(i)) {
				return false
			}
		}
		return true
	case KindMap:
		am, bm := a.AsMap(), b.AsMap()
		if am.Len() != bm.Len() {
			return false
		}
		match := true
		am.Range(func(key string, av Value) bool {
			if !Equal(av, bm.Get(key)) {
				match = false
				return false
			}
			return true
		})
		return match
	default:
		return false
	}
}

// resolveSlot follows the value stored at container slot slotOff (width
// bytes wide) within buf, dereferencing a back-pointer if present and
// resolving it into an extern range via the owning Scope if the pointer's
// target falls before the start of buf. The returned Value's buf may
// therefore differ from the input buf.
func resolveSlot(buf []byte, slotOff int, width wire.SlotWidth) (Value, error) {
	if width == wire.Width4 {
		if target, ok := wire.DecodeWidePointer(buf[slotOff : slotOff+4]); ok {
			return followPointer(buf, slotOff, target)
		}
		return Value{buf: buf, off: slotOff}, nil
	}
	h, err := wire.DecodeHeader(buf[slotOff : slotOff+2])
	if err != nil {
		return Value{}, err
	}
	if h.IsPointer {
		return followPointer(buf, slotOff, h.Offset)
	}
	return Value{buf: buf, off: slotOff}, nil
}

func followPointer(buf []byte, slotOff, distance int) (Value, error) {
	target, err := wire.ResolvePointerTarget(slotOff, distance, len(buf))
	if err != nil {
		return Value{}, err
	}
	if target >= 0 {
		return Value{buf: buf, off: target}, nil
	}
	scope, ok := Containing(buf, 0)
	if !ok {
		return Value{}, ErrWrongType
	}
	externOff, ok := scope.resolveExternOffset(target)
	if !ok {
		return Value{}, ErrWrongType
	}
	return Value{buf: scope.extern, off: externOff}, nil
}
