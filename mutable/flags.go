package mutable

// CopyFlags controls how NewMutableArrayFromSource and
// NewMutableDictFromSource treat the source they're overlaying, as a
// small options struct rather than a string of bool parameters.
type CopyFlags struct {
	// Deep recursively wraps nested arrays/maps in mutable overlays too,
	// instead of leaving them as plain immutable weft.Values until
	// GetMutableArray/GetMutableDict is called on them.
	Deep bool
	// CopyImmutables is stored but not read: immutable children are
	// always shared with the source, never cloned, whatever its value.
	CopyImmutables bool
}
