package ydbf

import (
	"io"
	"log/slog"
	"time"
)

// Mode selects whether Open reads or writes.
type Mode string

const (
	Read  Mode = "r"
	Write Mode = "w"
)

// Options gathers the settings of both modes of Open. Fields is required
// for writing and renames the file fields when reading.
type Options struct {
	Fields        []Field
	RawCharacters bool
	Encoding      string
	Strict        bool
	Date          time.Time
	RecordCount   int
	Logger        *slog.Logger
}

// DBF is the handle returned by Open: a *Reader or a *Writer.
type DBF interface {
	io.Closer
	Fields() []Field
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Open opens target in the given mode. target is a file name, an
// io.ReadSeeker for reading or an io.Writer for writing. The mode and the
// field structure are checked before the target is touched.
func Open(target any, mode Mode, opts Options) (DBF, error) {
	switch mode {
	case Read, Write:
	default:
		return nil, configErrorf("wrong mode %q, use %q or %q", mode, Read, Write)
	}
	if mode == Write && len(opts.Fields) == 0 {
		return nil, configErrorf("field structure is required for writing")
	}
	if mode == Read {
		cfg := ReaderConfig{
			Fields:        opts.Fields,
			RawCharacters: opts.RawCharacters,
			Encoding:      opts.Encoding,
			Strict:        opts.Strict,
			Logger:        opts.Logger,
		}
		var (
			r   *Reader
			err error
		)
		switch t := target.(type) {
		case string:
			r, err = OpenReader(t, cfg)
		case io.ReadSeeker:
			r, err = NewReader(t, cfg)
		default:
			return nil, configErrorf("cannot read from %T", target)
		}
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	cfg := WriterConfig{
		Encoding:      opts.Encoding,
		RawCharacters: opts.RawCharacters,
		Date:          opts.Date,
		RecordCount:   opts.RecordCount,
		Logger:        opts.Logger,
	}
	var (
		w   *Writer
		err error
	)
	switch t := target.(type) {
	case string:
		w, err = Create(t, opts.Fields, cfg)
	case io.Writer:
		w, err = NewWriter(t, opts.Fields, cfg)
	default:
		return nil, configErrorf("cannot write to %T", target)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}
