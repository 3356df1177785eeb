package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	if got := U16LE(data); got != 0x2301 {
		t.Fatalf("U16LE = 0x%x, want 0x2301", got)
	}
	if got := U32LE(data); got != 0x67452301 {
		t.Fatalf("U32LE = 0x%x, want 0x67452301", got)
	}
	if got := U64LE(data); got != 0xefcdab8967452301 {
		t.Fatalf("U64LE = 0x%x, want 0xefcdab8967452301", got)
	}

	short := []byte{0xAA}
	if U16LE(short) != 0 {
		t.Fatalf("U16LE short should be 0")
	}
	if U32LE(short) != 0 || U64LE(short) != 0 {
		t.Fatalf("short reads should return 0")
	}

	buf := make([]byte, 8)
	PutU16LE(buf, 0x2301)
	if U16LE(buf) != 0x2301 {
		t.Fatalf("PutU16LE/U16LE round-trip failed")
	}
	PutU32LE(buf, 0x67452301)
	if U32LE(buf) != 0x67452301 {
		t.Fatalf("PutU32LE/U32LE round-trip failed")
	}
	PutU64LE(buf, 0xefcdab8967452301)
	if U64LE(buf) != 0xefcdab8967452301 {
		t.Fatalf("PutU64LE/U64LE round-trip failed")
	}

	if got := U32BE(data); got != 0x01234567 {
		t.Fatalf("U32BE = 0x%x, want 0x01234567", got)
	}
	if got := U16BE(data); got != 0x0123 {
		t.Fatalf("U16BE = 0x%x, want 0x0123", got)
	}
	if got := U64BE(data); got != 0x0123456789abcdef {
		t.Fatalf("U64BE = 0x%x, want 0x0123456789abcdef", got)
	}
	if U32BE(short) != 0 || U16BE(short) != 0 || U64BE(short) != 0 {
		t.Fatalf("short BE reads should return 0")
	}

	PutU16BE(buf, 0x0123)
	if U16BE(buf) != 0x0123 {
		t.Fatalf("PutU16BE/U16BE round-trip failed")
	}
	PutU32BE(buf, 0x01234567)
	if U32BE(buf) != 0x01234567 {
		t.Fatalf("PutU32BE/U32BE round-trip failed")
	}
	PutU64BE(buf, 0x0123456789abcdef)
	if U64BE(buf) != 0x0123456789abcdef {
		t.Fatalf("PutU64BE/U64BE round-trip failed")
	}
}
