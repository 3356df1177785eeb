package wire

import (
	"fmt"
)

// ContainerHeader describes a decoded array/map header: its element count,
// per-slot width, and the byte offset where the slot array begins (after
// any wide-count varint).
type ContainerHeader struct {
	Count      int
	Width      SlotWidth
	SlotsStart int // offset of the first slot, relative to the header's offset 0
}

// DecodeContainerHeader decodes the header of an array or map cell. b must
// start at the 2-byte header. For a map, Count is the number of SLOTS:
// twice the pair count stored in the encoded header.
func DecodeContainerHeader(b []byte, isMap bool) (ContainerHeader, error) {
	hdr, err := DecodeHeader(b)
	if err != nil {
		return ContainerHeader{}, err
	}
	if hdr.IsPointer {
		return ContainerHeader{}, fmt.Errorf("container: header is a pointer")
	}
	width := Width2
	if hdr.Payload&widthBitMask != 0 {
		width = Width4
	}
	count := int(hdr.Payload &^ widthBitMask)

	slotsStart := 2
	if count == wideCountMarker {
		v, n, ok := GetVarint(b[2:])
		if !ok {
			return ContainerHeader{}, fmt.Errorf("container: %w", ErrTruncated)
		}
		count = int(v)
		slotsStart = 2 + n
	}
	if isMap {
		count *= 2
	}
	return ContainerHeader{Count: count, Width: width, SlotsStart: slotsStart}, nil
}

// EncodeContainerHeader appends a container header (and wide-count varint,
// if needed) to dst. count is the header's own count field: array length for
// TagArray, or pair count (not slot count) for TagMap. DecodeContainerHeader
// doubles it back out when isMap is true.
func EncodeContainerHeader(dst []byte, tag Tag, count int, width SlotWidth) []byte {
	payload := uint16(0)
	if width == Width4 {
		payload |= widthBitMask
	}
	if count > maxInlineCount {
		payload |= wideCountMarker
		hdr := make([]byte, 2)
		PutScalarHeader(hdr, tag, payload)
		dst = append(dst, hdr...)
		dst = PutVarint(dst, uint64(count))
		return dst
	}
	payload |= uint16(count)
	hdr := make([]byte, 2)
	PutScalarHeader(hdr, tag, payload)
	return append(dst, hdr...)
}

// SlotOffset returns the byte offset of slot index i within a container,
// relative to the container header's own offset 0.
func (c ContainerHeader) SlotOffset(i int) int {
	return c.SlotsStart + i*int(c.Width)
}

// DecodeLengthPrefixed decodes the length-prefix scheme shared by string and
// blob cells: lengths up to 4094 are stored inline as the full 12-bit header
// payload; longer values store the marker 0x0fff in the payload and a varint
// length immediately after the header. The inline form is not limited to
// lengths below 16.
//
// Returns the payload bytes (excluding header and any varint) and the total
// cell size in bytes.
func DecodeLengthPrefixed(b []byte, payload uint16) (data []byte, totalSize int, err error) {
	const shortMax = 0x0fff - 1
	const lengthMarker = 0x0fff

	length := int(payload)
	headerAndVarint := 2
	if payload == lengthMarker {
		v, n, ok := GetVarint(b[2:])
		if !ok {
			return nil, 0, fmt.Errorf("length-prefixed: %w", ErrTruncated)
		}
		length = int(v)
		headerAndVarint = 2 + n
	} else if int(payload) > shortMax {
		return nil, 0, fmt.Errorf("length-prefixed: invalid short length %d", payload)
	}
	total := headerAndVarint + length
	if total > len(b) {
		return nil, 0, fmt.Errorf("length-prefixed: %w", ErrTruncated)
	}
	return b[headerAndVarint:total], total, nil
}

// EncodeLengthPrefixed appends a (tag, length-prefix, bytes) cell to dst.
func EncodeLengthPrefixed(dst []byte, tag Tag, data []byte) []byte {
	const lengthMarker = 0x0fff
	const shortMax = lengthMarker - 1

	if len(data) <= shortMax {
		hdr := make([]byte, 2)
		PutScalarHeader(hdr, tag, uint16(len(data)))
		dst = append(dst, hdr...)
		return append(dst, data...)
	}
	hdr := make([]byte, 2)
	PutScalarHeader(hdr, tag, lengthMarker)
	dst = append(dst, hdr...)
	dst = PutVarint(dst, uint64(len(data)))
	return append(dst, data...)
}

// Pad2 appends a single zero byte to dst if its length is odd, keeping every
// cell 2-byte aligned.
func Pad2(dst []byte) []byte {
	if len(dst)%2 != 0 {
		dst = append(dst, 0)
	}
	return dst
}
