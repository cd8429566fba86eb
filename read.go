package ydbf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
)

// Record maps field names to decoded values: string (or []byte in raw
// mode) for Character, int64 or *apd.Decimal for Numeral, time.Time or nil
// for Date and bool for Logical.
type Record map[string]any

// ReaderConfig tunes how a file is read. The zero value reads characters as
// text in the encoding named by the language code of the file.
type ReaderConfig struct {
	// Fields renames or retypes the file fields positionally. Sizes must
	// match the file.
	Fields []Field
	// RawCharacters returns Character fields as []byte instead of text.
	RawCharacters bool
	// Encoding overrides the encoding named by the language code.
	Encoding string
	// Strict runs the consistency checks after opening.
	Strict bool
	Logger *slog.Logger
}

// Reader decodes the records of a DBF file. A Reader is not safe for
// concurrent use.
type Reader struct {
	src    io.ReadSeeker
	closer io.Closer
	t      *table
	log    *slog.Logger
	pos    int64
	buf    []byte
	gen    uint64
	closed bool
}

// NewReader reads the header and field descriptors of src and prepares the
// record converters.
func NewReader(src io.ReadSeeker, cfg ReaderConfig) (*Reader, error) {
	log := cfg.Logger
	if log == nil {
		log = discardLogger
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	t, err := buildTable(src, cfg, log)
	if err != nil {
		return nil, err
	}
	r := &Reader{
		src: src,
		t:   t,
		log: log,
		pos: int64(headerSize + descriptorSize*len(t.physical) + 1),
		buf: make([]byte, t.layout.recordSize),
	}
	if cfg.Strict {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// OpenReader opens the named file for reading. The file is closed by Close
// or when initialisation fails.
func OpenReader(fileName string, cfg ReaderConfig) (*Reader, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f, cfg)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

func (r *Reader) Header() Header { return r.t.header }

// Fields returns the exposed fields, without the deletion flag.
func (r *Reader) Fields() []Field { return append([]Field(nil), r.t.fields...) }

// Len returns the number of record slots declared by the header, deleted
// records included.
func (r *Reader) Len() int { return int(r.t.header.NumRecords) }

// RecordSize returns the size of one record in bytes, deletion flag included.
func (r *Reader) RecordSize() int { return r.t.layout.recordSize }

// Encoding returns the name of the charset used for Character fields, or ""
// in raw mode.
func (r *Reader) Encoding() string { return r.t.encoding.name() }

// Close releases the file when the Reader owns it. Cursors stop working.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Get decodes the record slot at index. The deletion flag is always part
// of the result.
func (r *Reader) Get(index int) (Record, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if index < 0 || index >= r.Len() {
		return nil, fmt.Errorf("index %d out of range [0, %d)", index, r.Len())
	}
	raw, err := r.readRecord(index)
	if err != nil {
		return nil, err
	}
	return r.decode(index, raw, true)
}

// GetInto decodes the record slot at index into the struct pointed to by v.
func (r *Reader) GetInto(index int, v any) error {
	rec, err := r.Get(index)
	if err != nil {
		return err
	}
	return Unmarshal(rec, v)
}

// readRecord reads one record into the shared buffer, seeking only when
// the source is not already at the record offset.
func (r *Reader) readRecord(index int) ([]byte, error) {
	offset := int64(r.t.header.HeaderLength) + int64(r.t.layout.recordSize)*int64(index)
	if r.pos != offset {
		if _, err := r.src.Seek(offset, io.SeekStart); err != nil {
			r.pos = -1
			return nil, err
		}
		r.pos = offset
	}
	n, err := io.ReadFull(r.src, r.buf)
	r.pos += int64(n)
	if err != nil {
		return nil, err
	}
	return r.buf, nil
}

func (r *Reader) decode(index int, raw []byte, showDeleted bool) (Record, error) {
	l := r.t.layout
	rec := make(Record, len(l.fields))
	for i, f := range l.fields {
		if i == 0 && !showDeleted {
			continue
		}
		val := bytes.TrimRight(l.slice(raw, i), "\x00")
		v, err := r.t.converters[i].decode(val, f)
		if err != nil {
			return nil, r.recordError(index, f, err)
		}
		rec[f.Name] = v
	}
	return rec, nil
}

func (r *Reader) recordError(index int, f Field, err error) error {
	var cerr *charsetError
	if errors.As(err, &cerr) {
		enc := r.t.encoding
		return &DecodeError{
			Record:   index,
			Field:    f.Name,
			Encoding: enc.name(),
			Builtin:  enc.builtin,
			Explicit: enc.explicit,
			LangCode: enc.langCode,
			Err:      cerr.err,
		}
	}
	return &FieldError{Record: index, Field: f.Name, Err: err}
}

// physicalSize reports the byte size of the source when it exposes one.
func (r *Reader) physicalSize() (int64, bool) {
	switch s := r.src.(type) {
	case interface{ Stat() (fs.FileInfo, error) }:
		info, err := s.Stat()
		if err != nil {
			return 0, false
		}
		return info.Size(), true
	case interface{ Size() int64 }:
		return s.Size(), true
	}
	return 0, false
}
