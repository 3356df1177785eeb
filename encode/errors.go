package encode

import "errors"

// ErrCode classifies an Encoder's sticky failure, matching the boundary
// error codes spec'd for consumers (memoryError, invalidData, encodeError,
// jsonError, ...).
type ErrCode int

const (
	ErrCodeNone ErrCode = iota
	ErrCodeEncode
	ErrCodeInvalidData
	ErrCodeJSON
	ErrCodeUnsupported
)

var (
	// ErrKeyWithoutValue is returned when EndDictionary closes a map with
	// an outstanding WriteKey call that no value was ever written for.
	ErrKeyWithoutValue = errors.New("encode: key written without a matching value")
	// ErrValueWithoutKey is returned when a value-writing call happens
	// inside an open dictionary before WriteKey.
	ErrValueWithoutKey = errors.New("encode: value written without a preceding key")
	// ErrUnbalancedEnd is returned by EndArray/EndDictionary when there is
	// no matching open container, or the open container is the other kind.
	ErrUnbalancedEnd = errors.New("encode: unbalanced end call")
	// ErrOpenContainer is returned by Finish when a Begin call was never
	// closed.
	ErrOpenContainer = errors.New("encode: container left open at Finish")
	// ErrNoRoot is returned by Finish when nothing was ever written.
	ErrNoRoot = errors.New("encode: nothing written")
	// ErrMultipleRoots is returned when a second top-level value is
	// written after one already completed; the wire format's trailer can
	// only name one root.
	ErrMultipleRoots = errors.New("encode: more than one top-level value written")
)
