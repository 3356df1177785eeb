// Package jsonio converts between weft documents and JSON/JSON5 text.
//
// Encoding reuses weft.Value's own ToJSON/ToJSON5 renderers; this package
// only adds the other direction, wiring the hand-written recursive-descent
// parser in internal/jsonlex to an encode.Encoder so it drives the encoder
// directly rather than building an intermediate tree.
package jsonio
