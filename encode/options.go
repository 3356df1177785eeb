// Package encode implements the streaming builder that produces the bytes
// a weft.Doc reads back: scalar and container writer calls, string
// uniquing, container finalization (slot-width choice, map-key sort), and
// base-document amendment for append-only growth of an existing document.
package encode

// Format names an output representation. The Encoder does not consult it:
// Finish always returns weft binary cells.
type Format int

const (
	// FormatBinary is the weft binary cell format (the default).
	FormatBinary Format = iota
	// FormatJSON names canonical JSON text.
	FormatJSON
	// FormatJSON5 names JSON5 text (unquoted bare keys where possible).
	FormatJSON5
)

// Options configures a new Encoder. The zero Options is not valid; use
// DefaultOptions and override individual fields.
type Options struct {
	// Format records the requested output representation. The Encoder
	// does not read it; output is binary whatever its value. Text output
	// is available from weft.Value's ToJSON and ToJSON5.
	// Default: FormatBinary.
	Format Format

	// ReserveSize is the initial buffer capacity, in bytes. A good guess
	// avoids reallocation during encoding but is not required to be exact.
	// Default: 256.
	ReserveSize int

	// UniqueStrings enables content-hash string deduplication: a second
	// write of previously-seen string bytes back-references the first
	// instead of re-embedding them.
	// Default: true.
	UniqueStrings bool

	// Canonical records whether map keys are to be sorted on JSON/JSON5
	// output. The Encoder does not read it and produces no JSON output;
	// binary output always sorts map keys (the wire format requires it).
	// Default: true.
	Canonical bool

	// SuppressTrailer omits the root-pointer trailer from Finish's output,
	// for callers that track the root offset out of band (e.g. base
	// amendment, where the caller already knows where the new top-level
	// value landed).
	// Default: false.
	SuppressTrailer bool
}

// DefaultOptions returns the recommended options for general-purpose
// encoding: binary format, string uniquing on, canonical map-key order.
func DefaultOptions() Options {
	return Options{
		Format:        FormatBinary,
		ReserveSize:   256,
		UniqueStrings: true,
		Canonical:     true,
	}
}
