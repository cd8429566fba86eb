package ydbf

import (
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch(t *testing.T) {
	rules := conversionRules(asciiCharset{})
	tests := []struct {
		field Field
		text  bool
		want  string
	}{
		{Field{Type: Character, Size: 5}, true, "text"},
		{Field{Type: Character, Size: 5}, false, "bytes"},
		{Field{Type: Numeral, Size: 5, Decimal: 2}, true, "decimal"},
		{Field{Type: Numeral, Size: 5}, true, "integer"},
		{Field{Type: Date, Size: 8}, false, "date"},
		{Field{Type: Logical, Size: 1}, true, "logical"},
	}
	for _, tt := range tests {
		conv, err := dispatch(rules, tt.field, tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, conv.name, "%s/%d text=%v", tt.field.Type, tt.field.Decimal, tt.text)
	}

	_, err := dispatch(rules, Field{Name: "MEMO", Type: 'M', Size: 10}, true)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestDecodeInteger(t *testing.T) {
	f := Field{Name: "N", Type: Numeral, Size: 19}
	v, err := decodeInteger([]byte("                   "), f)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	v, err = decodeInteger([]byte(" -9223372036854775808"), f)
	require.NoError(t, err)
	assert.Equal(t, int64(-9223372036854775808), v)

	_, err = decodeInteger([]byte("1.5"), f)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestDecodeDecimal(t *testing.T) {
	f := Field{Name: "N", Type: Numeral, Size: 7, Decimal: 2}
	v, err := decodeDecimal([]byte("  12.50"), f)
	require.NoError(t, err)
	d := v.(*apd.Decimal)
	assert.Equal(t, "12.50", d.Text('f'))
	assert.Zero(t, d.Cmp(apd.New(1250, -2)))

	v, err = decodeDecimal([]byte("     12"), f)
	require.NoError(t, err)
	assert.Equal(t, "12.00", v.(*apd.Decimal).Text('f'))

	v, err = decodeDecimal([]byte("       "), f)
	require.NoError(t, err)
	assert.True(t, v.(*apd.Decimal).IsZero())

	v, err = decodeDecimal([]byte("  1.005"), f)
	require.NoError(t, err)
	assert.Equal(t, "1.01", v.(*apd.Decimal).Text('f'))

	for _, raw := range []string{"  abc", "    NaN", "   Inf"} {
		_, err := decodeDecimal([]byte(raw), f)
		assert.ErrorIs(t, err, ErrFormat, raw)
	}
}

func TestEncodeNumerals(t *testing.T) {
	integer := Field{Name: "I", Type: Numeral, Size: 5}
	decimal := Field{Name: "D", Type: Numeral, Size: 8, Decimal: 3}
	tests := []struct {
		name  string
		field Field
		value any
		want  string
	}{
		{"int", integer, 42, "   42"},
		{"uint8", integer, uint8(255), "  255"},
		{"negative", integer, int32(-7), "   -7"},
		{"integral float", integer, 12.0, "   12"},
		{"integral string", integer, " 77 ", "   77"},
		{"nil integer", integer, nil, "    0"},
		{"float", decimal, 2.5, "   2.500"},
		{"rounded half up", decimal, "0.0005", "   0.001"},
		{"decimal", decimal, apd.New(-12345, -4), "  -1.235"},
		{"int as decimal", decimal, 3, "   3.000"},
		{"nil decimal", decimal, nil, "   0.000"},
	}
	rules := conversionRules(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := dispatch(rules, tt.field, false)
			require.NoError(t, err)
			b, err := conv.encode(tt.value, tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestDecodeLogical(t *testing.T) {
	f := Field{Name: "L", Type: Logical, Size: 1}
	for _, raw := range []string{"Y", "y", "T", "t"} {
		v, err := decodeLogical([]byte(raw), f)
		require.NoError(t, err)
		assert.Equal(t, true, v, raw)
	}
	for _, raw := range []string{"N", "n", "F", "f", "?", " ", ""} {
		v, err := decodeLogical([]byte(raw), f)
		require.NoError(t, err)
		assert.Equal(t, false, v, raw)
	}
}

func TestDates(t *testing.T) {
	f := Field{Name: "D", Type: Date, Size: 8}

	v, err := decodeDate([]byte("        "), f)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = decodeDate([]byte("20231301"), f)
	assert.ErrorIs(t, err, ErrFormat)

	d := time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []any{d, &d, "20231105", "05.11.2023"} {
		b, err := encodeDate(in, f)
		require.NoError(t, err)
		assert.Equal(t, "20231105", string(b), "%v", in)
	}
	for _, in := range []any{nil, time.Time{}, ""} {
		b, err := encodeDate(in, f)
		require.NoError(t, err)
		assert.Equal(t, "        ", string(b))
	}
}

func TestText(t *testing.T) {
	f := Field{Name: "C", Type: Character, Size: 8}
	cs := LookupCharset("cp850")
	require.NotNil(t, cs)

	b, err := encodeText(cs)("Café", f)
	require.NoError(t, err)
	assert.Equal(t, []byte("Caf\x82    "), b)

	v, err := decodeText(cs)(b, f)
	require.NoError(t, err)
	assert.Equal(t, "Café", v)

	v, err = decodeText(cs)([]byte("  lead\t "), f)
	require.NoError(t, err)
	assert.Equal(t, "  lead", v)

	_, err = encodeText(cs)("€", f)
	var cerr *charsetError
	assert.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, ErrEncode)
}

func TestBytes(t *testing.T) {
	f := Field{Name: "C", Type: Character, Size: 4}
	v, err := decodeBytes([]byte("\xffa  "), f)
	require.NoError(t, err)
	assert.Equal(t, []byte("\xffa"), v)

	b, err := encodeBytes("ab", f)
	require.NoError(t, err)
	assert.Equal(t, []byte("ab  "), b)

	_, err = encodeBytes(12, f)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = encodeBytes([]byte("abcde"), f)
	assert.ErrorIs(t, err, ErrOverflow)
}
