package ydbf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"
)

// WriterConfig tunes how a file is written. The zero value writes ascii
// text dated today.
type WriterConfig struct {
	// Encoding of Character fields; it also selects the language code.
	// Defaults to "ascii".
	Encoding string
	// RawCharacters stores []byte and string values without conversion.
	RawCharacters bool
	// Date is stored as the last update date. Defaults to today.
	Date time.Time
	// RecordCount announces the number of records, which lets a writer
	// stream to a destination that cannot seek.
	RecordCount int
	// FlushEvery rewrites the header every n records on seekable
	// destinations. Defaults to 1000; negative disables it.
	FlushEvery int
	Logger     *slog.Logger
}

// Writer encodes records into a new DBF file. The header and field
// descriptors are written before any record; the record count is fixed up
// when the Writer is closed.
type Writer struct {
	dst        io.Writer
	seeker     io.WriteSeeker // nil when dst cannot seek
	start      int64          // offset of the header in seeker
	closer     io.Closer
	fields     []Field
	layout     layout
	converters []converter
	encoding   string
	lang       byte
	date       time.Time
	expected   int
	pending    *bytes.Buffer // data section held back until Close
	flushEvery int
	numRecords int
	log        *slog.Logger
	closed     bool
}

// NewWriter validates the field structure and writes the header to dst
// unless the data section has to be buffered.
func NewWriter(dst io.Writer, fields []Field, cfg WriterConfig) (*Writer, error) {
	if err := checkDefinition(fields); err != nil {
		return nil, err
	}
	l := newLayout(fields)
	if headerSize+1+descriptorSize*len(fields) > 0xFFFF || l.recordSize > 0xFFFF {
		return nil, configErrorf("%d fields of %d bytes per record do not fit a DBF header", len(fields), l.recordSize)
	}
	encoding := strings.ToLower(cfg.Encoding)
	if encoding == "" {
		encoding = "ascii"
	}
	lang, ok := ReverseEncodings[encoding]
	if !ok {
		names := make([]string, 0, len(ReverseEncodings))
		for name := range ReverseEncodings {
			names = append(names, name)
		}
		slices.Sort(names)
		return nil, configErrorf("encoding %s is not available for DBF, please use one of: %s", encoding, strings.Join(names, ", "))
	}
	var cs Charset
	if !cfg.RawCharacters {
		if cs = LookupCharset(encoding); cs == nil {
			return nil, configErrorf("encoding %q is not available", encoding)
		}
	}
	converters, err := buildConverters(l.fields, cs)
	if err != nil {
		return nil, err
	}
	date := cfg.Date
	if date.IsZero() {
		date = time.Now()
	}
	if y := date.Year(); y < 1900 || y > 1900+0xFF {
		return nil, configErrorf("date %s cannot be stored in a DBF header", date.Format(time.DateOnly))
	}
	flushEvery := cfg.FlushEvery
	if flushEvery == 0 {
		flushEvery = 1000
	}
	log := cfg.Logger
	if log == nil {
		log = discardLogger
	}
	w := &Writer{
		dst:        dst,
		fields:     fields,
		layout:     l,
		converters: converters,
		encoding:   encoding,
		lang:       lang.Code,
		date:       date,
		expected:   cfg.RecordCount,
		flushEvery: flushEvery,
		log:        log,
	}
	if ws, ok := dst.(io.WriteSeeker); ok {
		if pos, err := ws.Seek(0, io.SeekCurrent); err == nil {
			w.seeker = ws
			w.start = pos
		}
	}
	if w.seeker == nil && w.expected <= 0 {
		w.pending = new(bytes.Buffer)
		log.Debug("destination cannot seek, buffering records until close")
		return w, nil
	}
	count := 0
	if w.seeker == nil {
		count = w.expected
	}
	if _, err := dst.Write(w.header(count)); err != nil {
		return nil, err
	}
	return w, nil
}

// Create creates or truncates the named file and returns a Writer owning it.
func Create(fileName string, fields []Field, cfg WriterConfig) (*Writer, error) {
	f, err := os.Create(fileName)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, fields, cfg)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// Fields returns the field structure being written.
func (w *Writer) Fields() []Field { return append([]Field(nil), w.fields...) }

// header renders the file header, field descriptors and terminator.
func (w *Writer) header(numRecords int) []byte {
	year, month, day := w.date.Date()
	raw := rawHeader{
		Signature:        DBase3,
		LastUpdateYear:   byte(year - 1900),
		LastUpdateMonth:  byte(month),
		LastUpdateDay:    byte(day),
		NumRecords:       uint32(numRecords),
		HeaderLength:     uint16(headerSize + 1 + descriptorSize*len(w.fields)),
		RecordLength:     uint16(w.layout.recordSize),
		LanguageDriverID: w.lang,
	}
	var buf bytes.Buffer
	// writes to a bytes.Buffer cannot fail
	_ = binary.Write(&buf, binary.LittleEndian, raw)
	for _, f := range w.fields {
		_ = binary.Write(&buf, binary.LittleEndian, f.descriptor())
	}
	buf.WriteByte(TERMINATOR)
	return buf.Bytes()
}

// encode renders one record, deletion flag first.
func (w *Writer) encode(index int, rec Record) ([]byte, error) {
	return encodeRecord(w.layout, w.converters, index, rec, w.encoding, w.lang)
}

func encodeRecord(l layout, converters []converter, index int, rec Record, encoding string, lang byte) ([]byte, error) {
	buf := make([]byte, 1, l.recordSize)
	buf[0] = SPACE
	for i := 1; i < len(l.fields); i++ {
		f := l.fields[i]
		v, ok := rec[f.Name]
		if !ok {
			return nil, &FieldError{Record: index, Field: f.Name, Err: formatErrorf("record has no value for field %s", f.Name)}
		}
		b, err := converters[i].encode(v, f)
		if err != nil {
			var overflow *OverflowError
			var cerr *charsetError
			switch {
			case errors.As(err, &overflow):
				overflow.Record = index
				return nil, overflow
			case errors.As(err, &cerr):
				err = fmt.Errorf("%w (encoding %s, lang code 0x%02x)", cerr.err, encoding, lang)
			}
			return nil, &FieldError{Record: index, Field: f.Name, Err: err}
		}
		buf = append(buf, b...)
	}
	return buf, nil
}

// Write encodes and appends one record. A record that fails to encode is
// not written.
func (w *Writer) Write(rec Record) error {
	if w.closed {
		return ErrClosed
	}
	buf, err := w.encode(w.numRecords, rec)
	if err != nil {
		return err
	}
	if w.pending != nil {
		w.pending.Write(buf)
	} else if _, err := w.dst.Write(buf); err != nil {
		return err
	}
	w.numRecords++
	if w.seeker != nil && w.flushEvery > 0 && w.numRecords%w.flushEvery == 0 {
		return w.Flush()
	}
	return nil
}

// WriteAll writes every record in order and stops at the first error.
func (w *Writer) WriteAll(records []Record) error {
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of records written so far.
func (w *Writer) Len() int { return w.numRecords }

// Flush rewrites the header with the current record count. It does nothing
// when the destination cannot seek.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	if w.seeker == nil {
		return nil
	}
	pos, err := w.seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.seeker.Seek(w.start, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.seeker.Write(w.header(w.numRecords)); err != nil {
		return err
	}
	if _, err := w.seeker.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	w.log.Debug("rewrote dbf header", "records", w.numRecords)
	return nil
}

// Close finalises the file: the header gets the record count and the
// end-of-file marker is appended. A file the Writer created is closed too.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	err := w.finish()
	w.closed = true
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (w *Writer) finish() error {
	switch {
	case w.pending != nil:
		if _, err := w.dst.Write(w.header(w.numRecords)); err != nil {
			return err
		}
		if _, err := w.pending.WriteTo(w.dst); err != nil {
			return err
		}
	case w.seeker != nil:
		if err := w.Flush(); err != nil {
			return err
		}
	}
	if _, err := w.dst.Write([]byte{EOF}); err != nil {
		return err
	}
	if w.seeker == nil && w.pending == nil && w.numRecords != w.expected {
		return configErrorf("announced %d records but wrote %d", w.expected, w.numRecords)
	}
	w.log.Debug("finished dbf", "records", w.numRecords, "encoding", w.encoding)
	return nil
}
