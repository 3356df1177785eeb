package encode

import (
	"fmt"

	"github.com/arnelofgren/weft/internal/jsonlex"
)

// ConvertJSON parses data as JSON (or JSON5, if json5 is set) straight
// into the encoder's own stream, as if the caller had driven the
// equivalent sequence of Write*/Begin*/End* calls itself. It is a
// separate state machine from the cell-by-cell writer API above, sharing
// only the scanner with weft/jsonio's FromJSON/FromJSON5.
func (e *Encoder) ConvertJSON(data []byte, json5 bool) bool {
	if e.failed() {
		return false
	}
	if err := jsonlex.Parse(data, jsonlex.Options{JSON5: json5}, e); err != nil {
		return e.fail(ErrCodeJSON, fmt.Errorf("encode: %w", err))
	}
	return !e.failed()
}
