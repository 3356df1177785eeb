package weft

import "testing"

func TestKeyPathEvaluate(t *testing.T) {
	doc, err := FromData(buildTestDoc(t), Untrusted, nil, nil)
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	defer doc.Close()

	cases := []struct {
		path string
		want string
	}{
		{"name", "Ada"},
		{".name", "Ada"},
		{"$.name", "Ada"},
		{"age", "36"},
	}
	for _, c := range cases {
		kp, err := ParseKeyPath(c.path)
		if err != nil {
			t.Fatalf("ParseKeyPath(%q): %v", c.path, err)
		}
		got := kp.Evaluate(doc.Root()).ToString()
		if got != c.want {
			t.Errorf("Evaluate(%q) = %q want %q", c.path, got, c.want)
		}
	}
}

func TestKeyPathMissOnUnknownKey(t *testing.T) {
	doc, err := FromData(buildTestDoc(t), Untrusted, nil, nil)
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	defer doc.Close()

	kp, err := ParseKeyPath("nope")
	if err != nil {
		t.Fatalf("ParseKeyPath: %v", err)
	}
	if !kp.Evaluate(doc.Root()).IsUndefined() {
		t.Fatalf("expected undefined for missing key")
	}
}

func TestKeyPathSyntaxErrors(t *testing.T) {
	bad := []string{"foo..bar", "foo[", "foo[x]", "foo[1", "."}
	for _, p := range bad {
		if _, err := ParseKeyPath(p); err != ErrKeyPathSyntax {
			t.Errorf("ParseKeyPath(%q) error = %v want ErrKeyPathSyntax", p, err)
		}
	}
}

func TestKeyPathEmptyIsRoot(t *testing.T) {
	doc, err := FromData(buildTestDoc(t), Untrusted, nil, nil)
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	defer doc.Close()

	kp, err := ParseKeyPath("")
	if err != nil {
		t.Fatalf("ParseKeyPath(\"\"): %v", err)
	}
	if !Equal(kp.Evaluate(doc.Root()), doc.Root()) {
		t.Fatalf("empty path should evaluate to the root value")
	}
}
