package ydbf

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(apd.Decimal{})
	decimalPtr  = reflect.TypeOf(&apd.Decimal{})
	bytesType   = reflect.TypeOf([]byte(nil))
)

// columnIndex maps column names to struct field indexes. A field takes its
// column from the `dbf` tag, or from its upper-cased name; "-" skips it.
func columnIndex(rt reflect.Type) map[string]int {
	index := make(map[string]int)
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		column := field.Tag.Get("dbf")
		if column == "-" {
			continue
		}
		if column == "" {
			column = strings.ToUpper(field.Name)
		}
		index[column] = i
	}
	return index
}

func structValue(v any, op string) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("%s requires a non-nil pointer to a struct", op)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%s requires a pointer to a struct, not a %s", op, rv.Kind())
	}
	return rv, nil
}

// Unmarshal stores the values of rec in the struct pointed to by v. Columns
// without a struct field and nil values are skipped.
func Unmarshal(rec Record, v any) error {
	rv, err := structValue(v, "Unmarshal")
	if err != nil {
		return err
	}
	for column, i := range columnIndex(rv.Type()) {
		val, ok := rec[column]
		if !ok || val == nil {
			continue
		}
		if err := setField(rv.Field(i), val); err != nil {
			return fmt.Errorf("column %s: %w", column, err)
		}
	}
	return nil
}

// Marshal turns the struct pointed to by v into a Record keyed by column.
func Marshal(v any) (Record, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Struct {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		rv = ptr
	}
	sv, err := structValue(rv.Interface(), "Marshal")
	if err != nil {
		return nil, err
	}
	index := columnIndex(sv.Type())
	rec := make(Record, len(index))
	for column, i := range index {
		rec[column] = sv.Field(i).Interface()
	}
	return rec, nil
}

var errKind = errors.New("cannot convert")

func setField(fieldValue reflect.Value, val any) error {
	switch fieldValue.Type() {
	case timeType:
		if t, ok := val.(time.Time); ok {
			fieldValue.Set(reflect.ValueOf(t))
			return nil
		}
		return fmt.Errorf("%w %T to time.Time", errKind, val)
	case decimalPtr, decimalType:
		d, err := toDecimal(val, Field{Name: "value", Type: Numeral})
		if err != nil {
			return err
		}
		if fieldValue.Type() == decimalPtr {
			fieldValue.Set(reflect.ValueOf(new(apd.Decimal).Set(d)))
		} else {
			fieldValue.Set(reflect.ValueOf(*new(apd.Decimal).Set(d)))
		}
		return nil
	case bytesType:
		switch b := val.(type) {
		case []byte:
			fieldValue.SetBytes(b)
			return nil
		case string:
			fieldValue.SetBytes([]byte(b))
			return nil
		}
		return fmt.Errorf("%w %T to []byte", errKind, val)
	}

	switch fieldValue.Kind() {
	case reflect.String:
		switch s := val.(type) {
		case string:
			fieldValue.SetString(s)
		case []byte:
			fieldValue.SetString(string(s))
		case int64:
			fieldValue.SetString(strconv.FormatInt(s, 10))
		case *apd.Decimal:
			fieldValue.SetString(s.Text('f'))
		case time.Time:
			fieldValue.SetString(string(FormatDate(s)))
		case bool:
			fieldValue.SetString(strconv.FormatBool(s))
		default:
			return fmt.Errorf("%w %T to string", errKind, val)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		num, err := intValue(val)
		if err != nil {
			return err
		}
		if fieldValue.OverflowInt(num) {
			return fmt.Errorf("%d overflows %s", num, fieldValue.Type())
		}
		fieldValue.SetInt(num)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		num, err := intValue(val)
		if err != nil {
			return err
		}
		if num < 0 || fieldValue.OverflowUint(uint64(num)) {
			return fmt.Errorf("%d overflows %s", num, fieldValue.Type())
		}
		fieldValue.SetUint(uint64(num))
	case reflect.Float32, reflect.Float64:
		var num float64
		switch n := val.(type) {
		case int64:
			num = float64(n)
		case *apd.Decimal:
			f, err := n.Float64()
			if err != nil {
				return err
			}
			num = f
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return err
			}
			num = f
		default:
			return fmt.Errorf("%w %T to %s", errKind, val, fieldValue.Type())
		}
		fieldValue.SetFloat(num)
	case reflect.Bool:
		b, ok := val.(bool)
		if !ok {
			return fmt.Errorf("%w %T to bool", errKind, val)
		}
		fieldValue.SetBool(b)
	default:
		return fmt.Errorf("%w %T to %s", errKind, val, fieldValue.Type())
	}
	return nil
}

func intValue(val any) (int64, error) {
	switch n := val.(type) {
	case int64:
		return n, nil
	case *apd.Decimal:
		return n.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	}
	return 0, fmt.Errorf("%w %T to an integer", errKind, val)
}
