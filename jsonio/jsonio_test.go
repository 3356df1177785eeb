package jsonio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromJSONScalarTypes(t *testing.T) {
	doc, err := FromJSON([]byte(`{"a":1,"b":"two","c":true,"d":null,"e":3.5}`))
	require.NoError(t, err)
	defer doc.Close()

	m := doc.Root().AsMap()
	require.Equal(t, int64(1), m.Get("a").AsInt64())
	require.Equal(t, "two", m.Get("b").AsString())
	require.True(t, m.Get("c").AsBool())
	require.True(t, m.Get("d").IsNull())
	require.InDelta(t, 3.5, m.Get("e").AsFloat64(), 0.0001)
}

func TestFromJSONNestedArray(t *testing.T) {
	doc, err := FromJSON([]byte(`[1,[2,3],{"x":4}]`))
	require.NoError(t, err)
	defer doc.Close()

	a := doc.Root().AsArray()
	require.Equal(t, 3, a.Len())
	require.Equal(t, int64(2), a.Get(1).AsArray().Get(0).AsInt64())
	require.Equal(t, int64(4), a.Get(2).AsMap().Get("x").AsInt64())
}

func TestFromJSONRejectsBareKey(t *testing.T) {
	_, err := FromJSON([]byte(`{a:1}`))
	require.ErrorIs(t, err, ErrBareKeyNotAllowed)
}

func TestFromJSONRejectsTrailingComma(t *testing.T) {
	_, err := FromJSON([]byte(`[1,2,]`))
	require.Error(t, err)
}

func TestFromJSONRejectsTrailingData(t *testing.T) {
	_, err := FromJSON([]byte(`1 2`))
	require.ErrorIs(t, err, ErrTrailingData)
}

func TestFromJSON5AllowsExtras(t *testing.T) {
	doc, err := FromJSON5([]byte(`{
		// comment
		unquoted: 'single-quoted',
		trailing: [1, 2,],
	}`))
	require.NoError(t, err)
	defer doc.Close()

	m := doc.Root().AsMap()
	require.Equal(t, "single-quoted", m.Get("unquoted").AsString())
	require.Equal(t, 2, m.Get("trailing").AsArray().Len())
}

func TestFromJSON5HexAndInfinity(t *testing.T) {
	doc, err := FromJSON5([]byte(`[0x1F, Infinity, -Infinity]`))
	require.NoError(t, err)
	defer doc.Close()

	a := doc.Root().AsArray()
	require.Equal(t, uint64(31), a.Get(0).AsUint64())
	require.True(t, a.Get(1).AsFloat64() > 1e300)
	require.True(t, a.Get(2).AsFloat64() < -1e300)
}

func TestToJSONRoundTrip(t *testing.T) {
	doc, err := FromJSON([]byte(`{"a":1,"b":[1,2,3]}`))
	require.NoError(t, err)
	defer doc.Close()

	out := ToJSON(doc.Root())
	doc2, err := FromJSON([]byte(out))
	require.NoError(t, err)
	defer doc2.Close()
	require.Equal(t, int64(1), doc2.Root().AsMap().Get("a").AsInt64())
}

func TestFromJSONStringEscapes(t *testing.T) {
	doc, err := FromJSON([]byte(`"line1\nline2\tA"`))
	require.NoError(t, err)
	defer doc.Close()
	require.Equal(t, "line1\nline2\tA", doc.Root().AsString())
}

func TestFromJSONUnterminatedStringFails(t *testing.T) {
	_, err := FromJSON([]byte(`"unterminated`))
	require.ErrorIs(t, err, ErrUnterminatedString)
}
