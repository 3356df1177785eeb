package weft

import "errors"

// ErrTrustedDataRejected is returned by FromTrustedData when the caller
// asked for trusted (unvalidated) decoding but the data was too short to
// even hold a trailer.
var ErrTrustedDataRejected = errors.New("weft: data too short for trusted decode")

// ErrWrongType is returned by pointer resolution when a pointer targets an
// offset before the start of its buffer that cannot be resolved into the
// owning Scope's extern range. Typed accessors such as AsArray and AsMap do
// not return it; they return zero values on a tag mismatch.
var ErrWrongType = errors.New("weft: value is not of the requested type")

// ErrKeyPathSyntax is returned by ParseKeyPath for a malformed path string.
var ErrKeyPathSyntax = errors.New("weft: malformed key path")

// ErrScopeOverlap describes a newly registered Scope's byte range
// overlapping, but not nested within, an already-registered Scope's range.
// Two scopes may be registered over the exact same range (duplicate
// registration of the same underlying data, e.g. reopening a doc) or one
// may be strictly nested in the other (a sub-scope); any other overlap
// means the caller is registering corrupt or conflicting ranges, which the
// registry cannot safely continue to serve lookups against. See
// RegistryError.
var ErrScopeOverlap = errors.New("weft: overlapping, non-nested scope registration")

// ErrScopeMismatch describes two scopes sharing the exact same byte range
// but disagreeing on shared keys or extern destination: two different
// views of what is supposed to be identical data. See RegistryError.
var ErrScopeMismatch = errors.New("weft: duplicate scope registration with mismatched configuration")

// RegistryError is panicked by scope registration (NewScope/NewSubScope) when a
// registration cannot be reconciled with the existing registry state. Such
// conditions mean the registry's invariants, which every subsequent
// Containing lookup relies on, can no longer be trusted, so rather than
// return an error for a caller to possibly ignore, registration panics.
type RegistryError struct {
	Err error
}

func (e *RegistryError) Error() string { return e.Err.Error() }

func (e *RegistryError) Unwrap() error { return e.Err }
