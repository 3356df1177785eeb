package wire

import "fmt"

// TrailerSize is the fixed size, in bytes, of the 2-byte pointer at the tail
// of a well-formed document that points back to the root value.
const TrailerSize = 2

// DecodeTrailer reads the root pointer from the last 2 bytes of data and
// resolves it to an absolute offset. Returns an error if data is too short,
// the trailer is not a pointer, or the target is out of range/misaligned.
func DecodeTrailer(data []byte) (rootOffset int, err error) {
	if len(data) < TrailerSize {
		return 0, fmt.Errorf("trailer: %w", ErrTruncated)
	}
	trailerOffset := len(data) - TrailerSize
	hdr, err := DecodeHeader(data[trailerOffset:])
	if err != nil {
		return 0, err
	}
	if !hdr.IsPointer {
		return 0, fmt.Errorf("trailer: not a pointer")
	}
	return ResolvePointerTarget(trailerOffset, hdr.Offset, len(data))
}

// EncodeTrailer appends a narrow pointer to rootOffset at the end of dst.
// rootOffset must be 2-byte aligned and less than len(dst).
func EncodeTrailer(dst []byte, rootOffset int) ([]byte, error) {
	trailerOffset := len(dst)
	distance := trailerOffset - rootOffset
	tail := make([]byte, TrailerSize)
	if err := PutNarrowPointer(tail, distance); err != nil {
		return nil, fmt.Errorf("trailer: %w", err)
	}
	return append(dst, tail...), nil
}
