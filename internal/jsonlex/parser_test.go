package jsonlex

import "testing"

// recordingSink is a minimal Sink that records call order, used to check
// the parser drives the grammar correctly without needing a real encoder.
type recordingSink struct {
	calls []string
}

func (s *recordingSink) WriteNull() bool            { s.calls = append(s.calls, "null"); return true }
func (s *recordingSink) WriteBool(v bool) bool      { s.calls = append(s.calls, boolStr(v)); return true }
func (s *recordingSink) WriteInt(v int64) bool      { s.calls = append(s.calls, "int"); return true }
func (s *recordingSink) WriteUInt(v uint64) bool    { s.calls = append(s.calls, "uint"); return true }
func (s *recordingSink) WriteDouble(v float64) bool { s.calls = append(s.calls, "double"); return true }
func (s *recordingSink) WriteString(v string) bool  { s.calls = append(s.calls, "string:"+v); return true }
func (s *recordingSink) BeginArray(int) bool        { s.calls = append(s.calls, "["); return true }
func (s *recordingSink) EndArray() bool             { s.calls = append(s.calls, "]"); return true }
func (s *recordingSink) BeginDictionary(int) bool   { s.calls = append(s.calls, "{"); return true }
func (s *recordingSink) EndDictionary() bool        { s.calls = append(s.calls, "}"); return true }
func (s *recordingSink) WriteKey(k string) bool     { s.calls = append(s.calls, "key:"+k); return true }

func boolStr(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func TestParseDrivesSinkInOrder(t *testing.T) {
	sink := &recordingSink{}
	err := Parse([]byte(`{"a":1,"b":[true,null]}`), Options{}, sink)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"{", "key:a", "int", "key:b", "[", "true", "null", "]", "}"}
	if len(sink.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", sink.calls, want)
	}
	for i := range want {
		if sink.calls[i] != want[i] {
			t.Fatalf("calls[%d] = %q, want %q", i, sink.calls[i], want[i])
		}
	}
}

func TestParseStrictRejectsComment(t *testing.T) {
	sink := &recordingSink{}
	if err := Parse([]byte("// hi\n1"), Options{}, sink); err == nil {
		t.Fatal("expected error for comment in strict JSON")
	}
}

func TestParseJSON5AllowsComment(t *testing.T) {
	sink := &recordingSink{}
	if err := Parse([]byte("// hi\n1"), Options{JSON5: true}, sink); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}
