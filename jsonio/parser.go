package jsonio

import (
	"github.com/arnelofgren/weft"
	"github.com/arnelofgren/weft/encode"
	"github.com/arnelofgren/weft/internal/jsonlex"
	"github.com/arnelofgren/weft/sharedkeys"
)

// Options configures a JSON/JSON5 parse.
type Options struct {
	// JSON5 relaxes the grammar: comments, trailing commas, unquoted
	// identifier keys, single-quoted strings, and a handful of extra
	// numeric literals. Default: false (strict JSON).
	JSON5 bool
	// SharedKeys, if set, is consulted by the encoder for auto-interning
	// eligible object keys. Default: nil.
	SharedKeys *sharedkeys.Table
}

// FromJSON parses strict JSON text into a new weft.Doc.
func FromJSON(data []byte) (*weft.Doc, error) {
	return Parse(data, Options{})
}

// FromJSON5 parses JSON5 text into a new weft.Doc.
func FromJSON5(data []byte) (*weft.Doc, error) {
	return Parse(data, Options{JSON5: true})
}

// Parse parses data under opts and returns the resulting document. The
// grammar itself is internal/jsonlex's; this function only wires an
// Encoder up as its sink and finishes the document.
func Parse(data []byte, opts Options) (*weft.Doc, error) {
	enc := encode.New()
	if opts.SharedKeys != nil {
		enc.SetSharedKeys(opts.SharedKeys)
	}
	if err := jsonlex.Parse(data, jsonlex.Options{JSON5: opts.JSON5}, enc); err != nil {
		return nil, err
	}
	return enc.FinishDoc()
}

// ToJSON renders v as canonical JSON text. It forwards to weft.Value's own
// renderer; only the parse direction needs a grammar, the encode
// direction doesn't.
func ToJSON(v weft.Value) string { return v.ToJSON() }

// ToJSON5 renders v as JSON5 text.
func ToJSON5(v weft.Value) string { return v.ToJSON5() }
