package ydbf

import (
	"bytes"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/apd/v3"
)

// decimalContext rounds half up and holds any numeral a field byte can
// declare.
var decimalContext = apd.BaseContext.WithPrecision(300)

type decodeFunc func(raw []byte, f Field) (any, error)

type encodeFunc func(v any, f Field) ([]byte, error)

type converter struct {
	name   string
	decode decodeFunc
	encode encodeFunc
}

// rule pairs a guard over (type, decimal count, text mode) with the
// converter it selects.
type rule struct {
	match func(f Field, text bool) bool
	conv  converter
}

// conversionRules returns the rules in priority order. cs may be nil when
// Character fields are handled as raw bytes.
func conversionRules(cs Charset) []rule {
	return []rule{
		{
			match: func(f Field, text bool) bool { return f.Type == Character && text },
			conv:  converter{name: "text", decode: decodeText(cs), encode: encodeText(cs)},
		},
		{
			match: func(f Field, text bool) bool { return f.Type == Character && !text },
			conv:  converter{name: "bytes", decode: decodeBytes, encode: encodeBytes},
		},
		{
			match: func(f Field, text bool) bool { return f.Type == Numeral && f.Decimal > 0 },
			conv:  converter{name: "decimal", decode: decodeDecimal, encode: encodeDecimal},
		},
		{
			match: func(f Field, text bool) bool { return f.Type == Numeral && f.Decimal == 0 },
			conv:  converter{name: "integer", decode: decodeInteger, encode: encodeInteger},
		},
		{
			match: func(f Field, text bool) bool { return f.Type == Date },
			conv:  converter{name: "date", decode: decodeDate, encode: encodeDate},
		},
		{
			match: func(f Field, text bool) bool { return f.Type == Logical },
			conv:  converter{name: "logical", decode: decodeLogical, encode: encodeLogical},
		},
	}
}

// dispatch returns the converter of the first matching rule.
func dispatch(rules []rule, f Field, text bool) (converter, error) {
	for _, r := range rules {
		if r.match(f, text) {
			return r.conv, nil
		}
	}
	return converter{}, formatErrorf("cannot find converter for field %s (type %s)", f.Name, f.Type)
}

// charsetError marks failures of the charset so the engine can attach the
// encoding context.
type charsetError struct{ err error }

func (e *charsetError) Error() string { return e.err.Error() }

func (e *charsetError) Unwrap() error { return e.err }

func decodeText(cs Charset) decodeFunc {
	return func(raw []byte, f Field) (any, error) {
		s, err := cs.Decode(raw)
		if err != nil {
			return nil, &charsetError{err}
		}
		return strings.TrimRightFunc(s, unicode.IsSpace), nil
	}
}

func encodeText(cs Charset) encodeFunc {
	return func(v any, f Field) ([]byte, error) {
		var b []byte
		switch val := v.(type) {
		case nil:
		case string:
			encoded, err := cs.Encode(val)
			if err != nil {
				return nil, &charsetError{err}
			}
			b = encoded
		case []byte:
			b = val
		default:
			return nil, unsupportedValue(v, f)
		}
		return ljust(b, f)
	}
}

const asciiSpace = " \t\n\v\f\r"

func decodeBytes(raw []byte, f Field) (any, error) {
	return bytes.Clone(bytes.TrimRight(raw, asciiSpace)), nil
}

func encodeBytes(v any, f Field) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return ljust(nil, f)
	case []byte:
		return ljust(val, f)
	case string:
		return ljust([]byte(val), f)
	}
	return nil, unsupportedValue(v, f)
}

func decodeInteger(raw []byte, f Field) (any, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return int64(0), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, formatErrorf("%q is not an integer", s)
	}
	return n, nil
}

func encodeInteger(v any, f Field) ([]byte, error) {
	var s string
	switch val := v.(type) {
	case nil:
		s = "0"
	case int:
		s = strconv.FormatInt(int64(val), 10)
	case int8:
		s = strconv.FormatInt(int64(val), 10)
	case int16:
		s = strconv.FormatInt(int64(val), 10)
	case int32:
		s = strconv.FormatInt(int64(val), 10)
	case int64:
		s = strconv.FormatInt(val, 10)
	case uint:
		s = strconv.FormatUint(uint64(val), 10)
	case uint8:
		s = strconv.FormatUint(uint64(val), 10)
	case uint16:
		s = strconv.FormatUint(uint64(val), 10)
	case uint32:
		s = strconv.FormatUint(uint64(val), 10)
	case uint64:
		s = strconv.FormatUint(val, 10)
	case float32, float64, *apd.Decimal, apd.Decimal, string:
		d, err := toDecimal(val, f)
		if err != nil {
			return nil, err
		}
		var integral apd.Decimal
		if _, err := decimalContext.Quantize(&integral, d, 0); err != nil || integral.Cmp(d) != 0 {
			return nil, formatErrorf("%v is not an integer value for field %s", val, f.Name)
		}
		s = integral.Text('f')
	default:
		return nil, unsupportedValue(v, f)
	}
	return rjust(s, f)
}

func decodeDecimal(raw []byte, f Field) (any, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		s = "0"
	}
	d, _, err := apd.NewFromString(s)
	if err != nil || d.Form != apd.Finite {
		return nil, formatErrorf("%q is not a number", s)
	}
	if _, err := decimalContext.Quantize(d, d, -int32(f.Decimal)); err != nil {
		return nil, formatErrorf("cannot round %q to %d decimals: %v", s, f.Decimal, err)
	}
	return d, nil
}

func encodeDecimal(v any, f Field) ([]byte, error) {
	d, err := toDecimal(v, f)
	if err != nil {
		return nil, err
	}
	var q apd.Decimal
	if _, err := decimalContext.Quantize(&q, d, -int32(f.Decimal)); err != nil {
		return nil, formatErrorf("cannot round %s to %d decimals: %v", d.Text('f'), f.Decimal, err)
	}
	return rjust(q.Text('f'), f)
}

func toDecimal(v any, f Field) (*apd.Decimal, error) {
	switch val := v.(type) {
	case nil:
		return apd.New(0, 0), nil
	case *apd.Decimal:
		if val == nil {
			return apd.New(0, 0), nil
		}
		return val, nil
	case apd.Decimal:
		return &val, nil
	case float64:
		return new(apd.Decimal).SetFloat64(val)
	case float32:
		return new(apd.Decimal).SetFloat64(float64(val))
	case int:
		return apd.New(int64(val), 0), nil
	case int32:
		return apd.New(int64(val), 0), nil
	case int64:
		return apd.New(val, 0), nil
	case string:
		d, _, err := apd.NewFromString(strings.TrimSpace(val))
		if err != nil || d.Form != apd.Finite {
			return nil, formatErrorf("%q is not a number", val)
		}
		return d, nil
	}
	return nil, unsupportedValue(v, f)
}

func decodeDate(raw []byte, f Field) (any, error) {
	t, ok, err := ParseDate(raw)
	if err != nil || !ok {
		return nil, err
	}
	return t, nil
}

func encodeDate(v any, f Field) ([]byte, error) {
	blank := bytes.Repeat([]byte{SPACE}, f.Size)
	switch val := v.(type) {
	case nil:
		return blank, nil
	case time.Time:
		if val.IsZero() {
			return blank, nil
		}
		return FormatDate(val), nil
	case *time.Time:
		if val == nil || val.IsZero() {
			return blank, nil
		}
		return FormatDate(*val), nil
	case string:
		if val == "" {
			return blank, nil
		}
		if len(val) == 8 && allDigits([]byte(val)) {
			return []byte(val), nil
		}
		return DisplayToDate(val)
	}
	return nil, unsupportedValue(v, f)
}

func decodeLogical(raw []byte, f Field) (any, error) {
	switch string(bytes.TrimSpace(raw)) {
	case "Y", "y", "T", "t":
		return true, nil
	}
	return false, nil
}

func encodeLogical(v any, f Field) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte{'F'}, nil
	case bool:
		if val {
			return []byte{'T'}, nil
		}
		return []byte{'F'}, nil
	}
	return nil, unsupportedValue(v, f)
}

func unsupportedValue(v any, f Field) error {
	return formatErrorf("value of type %T cannot be stored in %s field %s", v, f.Type, f.Name)
}

// ljust pads b with spaces on the right up to the field width.
func ljust(b []byte, f Field) ([]byte, error) {
	if len(b) > f.Size {
		return nil, &OverflowError{Field: f.Name, Value: string(b), Size: f.Size}
	}
	out := bytes.Repeat([]byte{SPACE}, f.Size)
	copy(out, b)
	return out, nil
}

// rjust pads s with spaces on the left up to the field width.
func rjust(s string, f Field) ([]byte, error) {
	if len(s) > f.Size {
		return nil, &OverflowError{Field: f.Name, Value: s, Size: f.Size}
	}
	out := bytes.Repeat([]byte{SPACE}, f.Size)
	copy(out[f.Size-len(s):], s)
	return out, nil
}
