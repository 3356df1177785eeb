package encode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arnelofgren/weft"
	"github.com/arnelofgren/weft/mutable"
	"github.com/arnelofgren/weft/sharedkeys"
)

func TestEncoderScalarRoundTrip(t *testing.T) {
	e := New()
	require.True(t, e.WriteInt(42))
	doc, err := e.FinishDoc()
	require.NoError(t, err)
	defer doc.Close()
	require.Equal(t, int64(42), doc.Root().AsInt64())
}

func TestEncoderArrayRoundTrip(t *testing.T) {
	e := New()
	require.True(t, e.BeginArray(3))
	require.True(t, e.WriteInt(1))
	require.True(t, e.WriteString("two"))
	require.True(t, e.WriteDouble(3.5))
	require.True(t, e.EndArray())
	doc, err := e.FinishDoc()
	require.NoError(t, err)
	defer doc.Close()

	a := doc.Root().AsArray()
	require.Equal(t, 3, a.Len())
	require.Equal(t, int64(1), a.Get(0).AsInt64())
	require.Equal(t, "two", a.Get(1).AsString())
	require.InDelta(t, 3.5, a.Get(2).AsFloat64(), 0.0001)
}

func TestEncoderDictionarySortsKeys(t *testing.T) {
	e := New()
	require.True(t, e.BeginDictionary(2))
	require.True(t, e.WriteKey("zebra"))
	require.True(t, e.WriteInt(1))
	require.True(t, e.WriteKey("apple"))
	require.True(t, e.WriteInt(2))
	require.True(t, e.EndDictionary())
	doc, err := e.FinishDoc()
	require.NoError(t, err)
	defer doc.Close()

	m := doc.Root().AsMap()
	require.Equal(t, 2, m.Len())
	require.Equal(t, int64(2), m.Get("apple").AsInt64())
	require.Equal(t, int64(1), m.Get("zebra").AsInt64())

	var keys []string
	m.Range(func(k string, _ weft.Value) bool {
		keys = append(keys, k)
		return true
	})
	require.Equal(t, []string{"apple", "zebra"}, keys)
}

func TestEncoderNestedContainers(t *testing.T) {
	e := New()
	require.True(t, e.BeginDictionary(1))
	require.True(t, e.WriteKey("items"))
	require.True(t, e.BeginArray(2))
	require.True(t, e.WriteBool(true))
	require.True(t, e.WriteNull())
	require.True(t, e.EndArray())
	require.True(t, e.EndDictionary())
	doc, err := e.FinishDoc()
	require.NoError(t, err)
	defer doc.Close()

	items := doc.Root().AsMap().Get("items").AsArray()
	require.Equal(t, 2, items.Len())
	require.True(t, items.Get(0).AsBool())
	require.True(t, items.Get(1).IsNull())
}

func TestEncoderStringUniquingBackreferences(t *testing.T) {
	e := New()
	require.True(t, e.BeginArray(2))
	require.True(t, e.WriteString("repeat-me-please"))
	require.True(t, e.WriteString("repeat-me-please"))
	require.True(t, e.EndArray())
	data, err := e.Finish()
	require.NoError(t, err)
	// One embedded copy plus a back-pointer is smaller than two copies.
	require.Less(t, len(data), 2*len("repeat-me-please"))

	doc, err := weft.FromData(data, weft.Untrusted, nil, nil)
	require.NoError(t, err)
	defer doc.Close()
	a := doc.Root().AsArray()
	require.Equal(t, "repeat-me-please", a.Get(0).AsString())
	require.Equal(t, "repeat-me-please", a.Get(1).AsString())
}

func TestEncoderSharedKeysInternsEligibleKeys(t *testing.T) {
	table := sharedkeys.New()
	e := New()
	e.SetSharedKeys(table)
	require.True(t, e.BeginDictionary(1))
	require.True(t, e.WriteKey("name"))
	require.True(t, e.WriteString("Ada"))
	require.True(t, e.EndDictionary())
	doc, err := e.FinishDoc()
	require.NoError(t, err)
	defer doc.Close()

	require.Equal(t, 1, table.Count())
	require.Equal(t, "Ada", doc.Root().AsMap().Get("name").AsString())
}

func TestEncoderMapOrdersIntCodedKeysBeforeStringKeys(t *testing.T) {
	table := sharedkeys.New()
	e := New()
	e.SetSharedKeys(table)
	require.True(t, e.BeginDictionary(4))
	// "zz!" is ineligible for interning: '!' lies outside the interning
	// alphabet [A-Za-z0-9_./$-], so the key stays a literal string.
	require.True(t, e.WriteKey("zz!"))
	require.True(t, e.WriteInt(1))
	require.True(t, e.WriteKey("age")) // eligible, interns to a low code
	require.True(t, e.WriteInt(2))
	require.True(t, e.WriteKey("aaa")) // eligible, interns to a higher code
	require.True(t, e.WriteInt(3))
	require.True(t, e.WriteKey("name")) // eligible
	require.True(t, e.WriteInt(4))
	require.True(t, e.EndDictionary())
	doc, err := e.FinishDoc()
	require.NoError(t, err)
	defer doc.Close()

	m := doc.Root().AsMap()
	require.Equal(t, 4, m.Len())

	// Every key is still reachable by its own lookup, regardless of
	// whether it landed in the integer-coded or string-coded partition.
	require.Equal(t, int64(1), m.Get("zz!").AsInt64())
	require.Equal(t, int64(2), m.Get("age").AsInt64())
	require.Equal(t, int64(3), m.Get("aaa").AsInt64())
	require.Equal(t, int64(4), m.Get("name").AsInt64())
	require.True(t, m.Get("missing").IsUndefined())

	// "age" was interned before "aaa" and "name", so despite "aaa" < "age"
	// byte-lexicographically, the int-coded partition orders by code, not
	// by the keys' decoded string form.
	var keys []string
	m.Range(func(k string, _ weft.Value) bool {
		keys = append(keys, k)
		return true
	})
	require.Equal(t, []string{"age", "aaa", "name", "zz!"}, keys)
}

func TestEncoderStickyErrorSurvivesSubsequentCalls(t *testing.T) {
	e := New()
	require.True(t, e.BeginArray(0))
	require.False(t, e.EndDictionary()) // mismatched end
	require.Error(t, e.Err())

	// Every later call is now a no-op.
	require.False(t, e.WriteInt(1))
	require.False(t, e.EndArray())
	_, err := e.Finish()
	require.Error(t, err)
}

func TestEncoderFinishWithoutRootFails(t *testing.T) {
	e := New()
	_, err := e.Finish()
	require.ErrorIs(t, err, ErrNoRoot)
}

func TestEncoderFinishWithOpenContainerFails(t *testing.T) {
	e := New()
	require.True(t, e.BeginArray(0))
	_, err := e.Finish()
	require.ErrorIs(t, err, ErrOpenContainer)
}

func TestEncoderMultipleTopLevelValuesFails(t *testing.T) {
	e := New()
	require.True(t, e.WriteInt(1))
	require.False(t, e.WriteInt(2))
	require.ErrorIs(t, e.Err(), ErrMultipleRoots)
}

func TestEncoderKeyWithoutValueFails(t *testing.T) {
	e := New()
	require.True(t, e.BeginDictionary(0))
	require.True(t, e.WriteKey("a"))
	require.False(t, e.EndDictionary())
	require.ErrorIs(t, e.Err(), ErrKeyWithoutValue)
}

func TestEncoderWriteValueDeepCopiesAcrossDocs(t *testing.T) {
	src := New()
	require.True(t, src.BeginArray(2))
	require.True(t, src.WriteUInt(18446744073709551615))
	require.True(t, src.WriteFloat(1.5))
	require.True(t, src.EndArray())
	srcDoc, err := src.FinishDoc()
	require.NoError(t, err)
	defer srcDoc.Close()

	dst := New()
	require.True(t, dst.WriteValue(srcDoc.Root()))
	dstDoc, err := dst.FinishDoc()
	require.NoError(t, err)
	defer dstDoc.Close()

	a := dstDoc.Root().AsArray()
	require.Equal(t, uint64(18446744073709551615), a.Get(0).AsUint64())
	require.True(t, a.Get(1).IsSingleFloat())
	require.InDelta(t, 1.5, a.Get(1).AsFloat64(), 0.0001)
}

func TestEncoderResetAllowsReuse(t *testing.T) {
	e := New()
	require.True(t, e.WriteInt(1))
	_, err := e.Finish()
	require.NoError(t, err)

	e.Reset()
	require.True(t, e.WriteInt(2))
	doc, err := e.FinishDoc()
	require.NoError(t, err)
	defer doc.Close()
	require.Equal(t, int64(2), doc.Root().AsInt64())
}

func TestEncoderConvertJSON(t *testing.T) {
	e := New()
	require.True(t, e.ConvertJSON([]byte(`{"a":1,"b":[2,3]}`), false))
	doc, err := e.FinishDoc()
	require.NoError(t, err)
	defer doc.Close()

	m := doc.Root().AsMap()
	require.Equal(t, int64(1), m.Get("a").AsInt64())
	require.Equal(t, 2, m.Get("b").AsArray().Len())
}

func TestEncoderConvertJSONRejectsBareKeyWithoutJSON5(t *testing.T) {
	e := New()
	require.False(t, e.ConvertJSON([]byte(`{a:1}`), false))
	require.Error(t, e.Err())
}

func TestEncoderWriteMutableReencodesEditedOverlay(t *testing.T) {
	src := New()
	require.True(t, src.BeginDictionary(3))
	require.True(t, src.WriteKey("a"))
	require.True(t, src.WriteInt(1))
	require.True(t, src.WriteKey("b"))
	require.True(t, src.WriteInt(2))
	require.True(t, src.WriteKey("c"))
	require.True(t, src.BeginArray(3))
	require.True(t, src.WriteInt(3))
	require.True(t, src.WriteInt(4))
	require.True(t, src.WriteInt(5))
	require.True(t, src.EndArray())
	require.True(t, src.EndDictionary())
	srcDoc, err := src.FinishDoc()
	require.NoError(t, err)
	defer srcDoc.Close()

	md := mutable.NewMutableDictFromSource(srcDoc.Root(), mutable.CopyFlags{})
	md.Set("a", mustInt(t, 2)) // the only edit: a becomes 2, b and c stay untouched

	dst := New()
	require.True(t, dst.WriteMutableDict(md))
	dstDoc, err := dst.FinishDoc()
	require.NoError(t, err)
	defer dstDoc.Close()

	m := dstDoc.Root().AsMap()
	require.Equal(t, int64(2), m.Get("a").AsInt64())
	require.True(t, weft.Equal(m.Get("b"), srcDoc.Root().AsMap().Get("b")))
	require.True(t, weft.Equal(m.Get("c"), srcDoc.Root().AsMap().Get("c")))
}

func mustInt(t *testing.T, n int64) weft.Value {
	t.Helper()
	e := New()
	require.True(t, e.WriteInt(n))
	doc, err := e.FinishDoc()
	require.NoError(t, err)
	t.Cleanup(doc.Close)
	return doc.Root()
}

func TestEncoderLargeArrayRoundTrip(t *testing.T) {
	const n = 200
	e := New()
	require.True(t, e.BeginArray(n))
	for i := 0; i < n; i++ {
		require.True(t, e.WriteInt(int64(i)))
	}
	require.True(t, e.EndArray())
	doc, err := e.FinishDoc()
	require.NoError(t, err)
	defer doc.Close()

	a := doc.Root().AsArray()
	require.Equal(t, n, a.Len())
	for i := 0; i < n; i++ {
		require.Equal(t, int64(i), a.Get(i).AsInt64())
	}
}
