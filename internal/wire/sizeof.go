package wire

import "fmt"

// SizeOfCell decodes the header at the start of b and returns the total
// size, in bytes, of the value cell beginning there (header plus any
// trailing payload or slot array). It does not follow pointers or recurse
// into a container's elements, only the container's own header+slots.
func SizeOfCell(b []byte) (int, error) {
	hdr, err := DecodeHeader(b)
	if err != nil {
		return 0, err
	}
	if hdr.IsPointer {
		return 2, nil
	}
	switch hdr.Tag {
	case TagShortInt, TagSpecial:
		return 2, nil
	case TagInt:
		ip := DecodeIntPayload(hdr.Payload)
		return pad2Size(2 + ip.ByteCount), nil
	case TagFloat:
		if hdr.Payload&1 == 0 {
			return 2 + 4, nil
		}
		return 2 + 8, nil
	case TagString, TagBlob:
		_, total, err := DecodeLengthPrefixed(b, hdr.Payload)
		if err != nil {
			return 0, err
		}
		return pad2Size(total), nil
	case TagArray:
		ch, err := DecodeContainerHeader(b, false)
		if err != nil {
			return 0, err
		}
		return ch.SlotOffset(ch.Count), nil
	case TagMap:
		ch, err := DecodeContainerHeader(b, true)
		if err != nil {
			return 0, err
		}
		return ch.SlotOffset(ch.Count), nil
	default:
		return 0, fmt.Errorf("sizeof: unknown tag %d", hdr.Tag)
	}
}

func pad2Size(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

// FitsInline reports whether a value cell of the given total size can be
// written directly into a container slot of the given width, instead of
// needing an out-of-line cell plus a pointer slot.
func FitsInline(cellSize int, width SlotWidth) bool {
	return cellSize <= int(width)
}
