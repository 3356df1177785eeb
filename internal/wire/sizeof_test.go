package wire

import "testing"

func TestSizeOfCellScalars(t *testing.T) {
	b := make([]byte, 2)
	PutScalarHeader(b, TagShortInt, 5)
	if n, err := SizeOfCell(b); err != nil || n != 2 {
		t.Fatalf("short int size = %d,%v want 2,nil", n, err)
	}

	var f []byte
	f = EncodeFloat(f, 1.5, FloatDouble)
	if n, err := SizeOfCell(f); err != nil || n != 10 {
		t.Fatalf("double size = %d,%v want 10,nil", n, err)
	}
}

func TestSizeOfCellString(t *testing.T) {
	var s []byte
	s = EncodeLengthPrefixed(s, TagString, []byte("hello"))
	n, err := SizeOfCell(s)
	if err != nil {
		t.Fatalf("SizeOfCell: %v", err)
	}
	if n != pad2Size(2+5) {
		t.Fatalf("got %d want %d", n, pad2Size(2+5))
	}
}

func TestSizeOfCellContainer(t *testing.T) {
	var a []byte
	a = EncodeContainerHeader(a, TagArray, 4, Width2)
	a = append(a, make([]byte, 4*2)...)
	n, err := SizeOfCell(a)
	if err != nil {
		t.Fatalf("SizeOfCell: %v", err)
	}
	if n != 2+8 {
		t.Fatalf("got %d want 10", n)
	}
}

func TestFitsInline(t *testing.T) {
	if !FitsInline(2, Width2) {
		t.Fatalf("2-byte cell should fit in width2 slot")
	}
	if FitsInline(3, Width2) {
		t.Fatalf("3-byte cell should not fit in width2 slot")
	}
	if !FitsInline(4, Width4) {
		t.Fatalf("4-byte cell should fit in width4 slot")
	}
}
