package sharedkeys

import "testing"

func TestEligible(t *testing.T) {
	cases := map[string]bool{
		"name":                  true,
		"_private":              true,
		"user_id2":              true,
		"":                      false,
		"1leading":              true,
		"a.b/c-d$e":             true,
		"way-too-long-key-name": false,
		"has space":             false,
		"héllo":                 false,
	}
	for s, want := range cases {
		if got := Eligible(s); got != want {
			t.Errorf("Eligible(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestEncodeAndAddRoundTrip(t *testing.T) {
	tbl := New()
	code, ok := tbl.Encode("name")
	if ok {
		t.Fatalf("Encode on empty table should miss, got code=%d", code)
	}

	c1, ok := tbl.EncodeAndAdd("name")
	if !ok || c1 != 0 {
		t.Fatalf("EncodeAndAdd(name) = %d,%v want 0,true", c1, ok)
	}
	c2, ok := tbl.EncodeAndAdd("age")
	if !ok || c2 != 1 {
		t.Fatalf("EncodeAndAdd(age) = %d,%v want 1,true", c2, ok)
	}
	c1Again, ok := tbl.EncodeAndAdd("name")
	if !ok || c1Again != c1 {
		t.Fatalf("EncodeAndAdd(name) again = %d,%v want %d,true", c1Again, ok, c1)
	}
	if tbl.Count() != 2 {
		t.Fatalf("Count() = %d want 2", tbl.Count())
	}

	s, ok := tbl.Decode(0)
	if !ok || s != "name" {
		t.Fatalf("Decode(0) = %q,%v want name,true", s, ok)
	}
	if _, ok := tbl.Decode(99); ok {
		t.Fatalf("Decode(99) should miss")
	}
}

func TestEncodeAndAddIneligible(t *testing.T) {
	tbl := New()
	if _, ok := tbl.EncodeAndAdd("has space"); ok {
		t.Fatalf("ineligible key should not be added")
	}
	if tbl.Count() != 0 {
		t.Fatalf("Count() = %d want 0", tbl.Count())
	}
}

func TestEncodeAndAddFull(t *testing.T) {
	tbl := New()
	for i := 0; i < MaxCount; i++ {
		k := shortKey(i)
		if _, ok := tbl.EncodeAndAdd(k); !ok {
			t.Fatalf("EncodeAndAdd(%q) failed at i=%d", k, i)
		}
	}
	if tbl.Count() != MaxCount {
		t.Fatalf("Count() = %d want %d", tbl.Count(), MaxCount)
	}
	if _, ok := tbl.EncodeAndAdd("overflow"); ok {
		t.Fatalf("table should be full")
	}
}

func TestFromStateRoundTrip(t *testing.T) {
	tbl := New()
	tbl.EncodeAndAdd("name")
	tbl.EncodeAndAdd("age")
	snapshot := tbl.State()

	restored := FromState(snapshot)
	code, ok := restored.Encode("age")
	if !ok || code != 1 {
		t.Fatalf("restored.Encode(age) = %d,%v want 1,true", code, ok)
	}
}

func shortKey(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	return string([]byte{letters[i%len(letters)], letters[(i/len(letters))%len(letters)], 'k'})
}
