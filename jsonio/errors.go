package jsonio

import "github.com/arnelofgren/weft/internal/jsonlex"

// Parse errors, re-exported from the shared scanner so callers never need
// to import internal/jsonlex themselves.
var (
	ErrUnexpectedEOF      = jsonlex.ErrUnexpectedEOF
	ErrUnterminatedString = jsonlex.ErrUnterminatedString
	ErrInvalidEscape      = jsonlex.ErrInvalidEscape
	ErrInvalidNumber      = jsonlex.ErrInvalidNumber
	ErrTrailingData       = jsonlex.ErrTrailingData
	ErrBareKeyNotAllowed  = jsonlex.ErrBareKeyNotAllowed
)
