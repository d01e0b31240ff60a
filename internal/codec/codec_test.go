package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/unrolled/internal/engine/unrolled"
)

func sample(t *testing.T, capacity, n int) *unrolled.List[int64] {
	t.Helper()
	values := make([]int64, n)
	for i := range values {
		values[i] = int64(i * 3)
	}
	l, err := unrolled.FromSlice(unrolled.Config[int64]{NodeCapacity: capacity}, values)
	require.NoError(t, err)
	return l
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{" cbor ", FormatCBOR, false},
		{"xml", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnknownFormat, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, mustParse(t, got.String()))
	}
	assert.Equal(t, "Format(7)", Format(7).String())
}

func mustParse(t *testing.T, s string) Format {
	t.Helper()
	f, err := ParseFormat(s)
	require.NoError(t, err)
	return f
}

func TestEncodeJSON_Layout(t *testing.T) {
	data, err := EncodeJSON(sample(t, 4, 5))
	require.NoError(t, err)

	doc := gjson.ParseBytes(data)
	assert.Equal(t, int64(SnapshotVersion), doc.Get("version").Int())
	assert.Equal(t, int64(4), doc.Get("nodeCapacity").Int())
	assert.Equal(t, int64(5), doc.Get("len").Int())
	assert.Equal(t, "[0,3,6,9,12]", doc.Get("values").Raw)
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatCBOR} {
		for _, n := range []int{0, 1, 7, 250} {
			src := sample(t, 7, n)

			data, err := Encode(f, src)
			require.NoError(t, err)

			got, err := Decode(f, unrolled.Config[int64]{}, data)
			require.NoError(t, err, "%v n=%d", f, n)
			require.NoError(t, got.Validate())
			assert.True(t, unrolled.Equal(src, got), "%v n=%d", f, n)
			assert.Equal(t, 7, got.NodeCapacity(), "snapshot capacity is used")
		}
	}
}

func TestDecode_ConfigCapacityWins(t *testing.T) {
	src := sample(t, 3, 20)
	for _, f := range []Format{FormatJSON, FormatCBOR} {
		data, err := Encode(f, src)
		require.NoError(t, err)

		got, err := Decode(f, unrolled.Config[int64]{NodeCapacity: 16}, data)
		require.NoError(t, err)
		assert.Equal(t, 16, got.NodeCapacity())
		assert.Equal(t, 2, got.NodeCount())
		assert.Equal(t, src.Slice(), got.Slice())
	}
}

func TestRoundTrip_Strings(t *testing.T) {
	src, err := unrolled.FromSlice(unrolled.Config[string]{NodeCapacity: 2}, []string{"a", "", "quote\"d", "ünï"})
	require.NoError(t, err)

	for _, f := range []Format{FormatJSON, FormatCBOR} {
		data, err := Encode(f, src)
		require.NoError(t, err)
		got, err := Decode(f, unrolled.Config[string]{}, data)
		require.NoError(t, err)
		assert.Equal(t, src.Slice(), got.Slice())
	}
}

func TestEncodeCBOR_Deterministic(t *testing.T) {
	a, err := EncodeCBOR(sample(t, 5, 40))
	require.NoError(t, err)
	b, err := EncodeCBOR(sample(t, 5, 40))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeJSON_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid", `{"version":1,`},
		{"no version", `{"values":[1]}`},
		{"future version", `{"version":2,"values":[1]}`},
		{"values not array", `{"version":1,"values":{}}`},
		{"bad element", `{"version":1,"values":[1,"two"]}`},
		{"len mismatch", `{"version":1,"len":3,"values":[1,2]}`},
		{"negative capacity", `{"version":1,"nodeCapacity":-2,"values":[1]}`},
		{"capacity too large", `{"version":1,"nodeCapacity":68719476736,"values":[1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON(unrolled.Config[int64]{}, []byte(tt.doc))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodeJSON_MissingCapacityUsesDefault(t *testing.T) {
	l, err := DecodeJSON(unrolled.Config[int64]{}, []byte(`{"version":1,"values":[1,2,3]}`))
	require.NoError(t, err)
	assert.Equal(t, unrolled.DefaultNodeCapacity, l.NodeCapacity())
	assert.Equal(t, []int64{1, 2, 3}, l.Slice())
}

func TestDecodeCBOR_Malformed(t *testing.T) {
	_, err := DecodeCBOR(unrolled.Config[int64]{}, []byte{0xff, 0x00})
	assert.ErrorIs(t, err, ErrMalformed)

	data, err := encMode.Marshal(cborSnapshot[int64]{Version: 9})
	require.NoError(t, err)
	_, err = DecodeCBOR(unrolled.Config[int64]{}, data)
	assert.ErrorIs(t, err, ErrMalformed)

	data, err = encMode.Marshal(cborSnapshot[int64]{Version: SnapshotVersion, NodeCapacity: unrolled.MaxNodeCapacity + 1, Values: []int64{1}})
	require.NoError(t, err)
	_, err = DecodeCBOR(unrolled.Config[int64]{}, data)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_ConfigCapacitySkipsSnapshotBound(t *testing.T) {
	l, err := DecodeJSON(unrolled.Config[int64]{NodeCapacity: 4}, []byte(`{"version":1,"nodeCapacity":-2,"values":[1,2]}`))
	require.NoError(t, err)
	assert.Equal(t, 4, l.NodeCapacity())
}

func TestUnknownFormat(t *testing.T) {
	_, err := Encode(Format(9), sample(t, 2, 2))
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = Decode(Format(9), unrolled.Config[int64]{}, nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
