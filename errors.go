package ydbf

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned for bad modes, missing field structures
	// and encodings that cannot be resolved.
	ErrConfiguration = errors.New("ydbf: configuration error")

	// ErrFormat is returned when the file does not follow the DBF layout.
	ErrFormat = errors.New("ydbf: format error")

	// ErrStructural is returned by the consistency checks of strict mode.
	ErrStructural = errors.New("ydbf: structural error")

	// ErrDecode is returned when character data cannot be decoded.
	ErrDecode = errors.New("ydbf: decode error")

	// ErrEncode is returned when text cannot be represented in the encoding
	// of the file.
	ErrEncode = errors.New("ydbf: encode error")

	// ErrOverflow is returned when a value does not fit its field width.
	ErrOverflow = errors.New("ydbf: value overflows field")

	// ErrClosed is returned when operating on a closed stream.
	ErrClosed = errors.New("ydbf: stream is closed")

	// ErrCursorInvalidated is returned by a cursor replaced by a newer one.
	ErrCursorInvalidated = errors.New("ydbf: cursor invalidated by a newer iteration")
)

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func formatErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

// StructuralError describes a failed consistency check.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string { return "ydbf: structural error: " + e.Reason }

func (e *StructuralError) Unwrap() error { return ErrStructural }

func structuralf(format string, args ...any) error {
	return &StructuralError{Reason: fmt.Sprintf(format, args...)}
}

// DecodeError carries the context needed to retry a read with another
// encoding.
type DecodeError struct {
	Record   int
	Field    string
	Encoding string // encoding in use
	Builtin  string // encoding named by the language code, if any
	Explicit string // encoding passed by the caller, if any
	LangCode byte
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ydbf: cannot decode field %s of record #%d: %v (encoding %q, builtin %q for lang code 0x%02x, explicit %q); set an explicit encoding",
		e.Field, e.Record, e.Err, e.Encoding, e.Builtin, e.LangCode, e.Explicit)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// OverflowError reports a value wider than its field.
type OverflowError struct {
	Record int
	Field  string
	Value  string
	Size   int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("ydbf: value %q of field %s in record #%d needs %d bytes, field width is %d",
		e.Value, e.Field, e.Record, len(e.Value), e.Size)
}

func (e *OverflowError) Unwrap() error { return ErrOverflow }

// FieldError wraps a conversion failure of a single field.
type FieldError struct {
	Record int
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("ydbf: field %s of record #%d: %v", e.Field, e.Record, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
