package wire

import (
	"errors"
	"fmt"

	"github.com/arnelofgren/weft/internal/buf"
)

// ErrTruncated indicates the buffer lacked the bytes required to decode a
// structure.
var ErrTruncated = errors.New("wire: truncated buffer")

// ErrBadAlignment indicates a pointer target was not on a 2-byte boundary.
var ErrBadAlignment = errors.New("wire: pointer target misaligned")

// ErrForwardPointer indicates a pointer targeted a later offset than itself.
var ErrForwardPointer = errors.New("wire: forward pointer")

// ErrOutOfRange indicates a pointer target fell outside the buffer.
var ErrOutOfRange = errors.New("wire: pointer target out of range")

// Header is a decoded 2-byte cell header: either a scalar/container
// (Tag, Payload) pair or a pointer (IsPointer, Offset).
type Header struct {
	IsPointer bool
	Tag       Tag
	Payload   uint16 // 12 bits, valid when !IsPointer
	Offset    int    // byte offset, valid when IsPointer (narrow form only; see DecodePointer for wide)
}

// DecodeHeader reads the 2-byte header at the start of b.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < 2 {
		return Header{}, fmt.Errorf("header: %w", ErrTruncated)
	}
	h := buf.U16BE(b)
	if h&narrowPointerFlag != 0 {
		off := int(h&narrowOffsetMask) * 2
		return Header{IsPointer: true, Offset: off}, nil
	}
	tag := Tag(h >> headerTagShift)
	payload := h & headerPayloadMask
	return Header{Tag: tag, Payload: payload}, nil
}

// PutScalarHeader encodes a (tag, 12-bit payload) header into b[0:2].
func PutScalarHeader(b []byte, tag Tag, payload uint16) {
	h := uint16(tag)<<headerTagShift | (payload & headerPayloadMask)
	buf.PutU16BE(b, h)
}

// PutNarrowPointer encodes a narrow (2-byte) back-pointer at b[0:2]. offset
// must be a non-negative, even, 2-byte-unit-representable distance backwards
// from the start of this header to the target.
func PutNarrowPointer(b []byte, offset int) error {
	if offset < 0 || offset%2 != 0 {
		return fmt.Errorf("wire: bad pointer offset %d", offset)
	}
	units := offset / 2
	if units > int(narrowOffsetMask) {
		return fmt.Errorf("wire: offset %d too large for narrow pointer", offset)
	}
	h := narrowPointerFlag | uint16(units)
	buf.PutU16BE(b, h)
	return nil
}

// PutWidePointer encodes a wide (4-byte) back-pointer at b[0:4].
func PutWidePointer(b []byte, offset int) error {
	if offset < 0 || offset%2 != 0 {
		return fmt.Errorf("wire: bad pointer offset %d", offset)
	}
	units := uint32(offset / 2)
	if units > wideOffsetMask {
		return fmt.Errorf("wire: offset %d too large for wide pointer", offset)
	}
	v := widePointerFlag | units
	buf.PutU32BE(b, v)
	return nil
}

// DecodeWidePointer reads a 4-byte wide pointer at b[0:4]. ok is false if the
// bytes do not form a wide pointer cell (top bit clear).
func DecodeWidePointer(b []byte) (offset int, ok bool) {
	if len(b) < 4 {
		return 0, false
	}
	v := buf.U32BE(b)
	if v&widePointerFlag == 0 {
		return 0, false
	}
	return int(v&wideOffsetMask) * 2, true
}

// ResolvePointerTarget computes the absolute byte offset a pointer at
// headerOffset (with the given byte distance backwards) refers to, and
// validates alignment, direction, and bounds against bufLen. A target below
// zero is returned as-is (negative), for the caller to interpret as an
// extern reference (see the Scope extern-resolution logic in package weft).
func ResolvePointerTarget(headerOffset, distance, bufLen int) (int, error) {
	if distance < 0 {
		return 0, fmt.Errorf("pointer: %w", ErrForwardPointer)
	}
	target := headerOffset - distance
	if target%2 != 0 {
		return 0, fmt.Errorf("pointer: %w", ErrBadAlignment)
	}
	if target >= headerOffset {
		return 0, fmt.Errorf("pointer: %w", ErrForwardPointer)
	}
	if target >= 0 && target >= bufLen {
		return 0, fmt.Errorf("pointer: %w", ErrOutOfRange)
	}
	return target, nil
}
