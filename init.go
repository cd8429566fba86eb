package ydbf

import (
	"io"
	"log/slog"
)

// table is the fully initialised, read-only description of an open file.
type table struct {
	header     Header
	physical   []Field // fields as declared by the descriptors
	fields     []Field // fields exposed to the caller
	layout     layout
	encoding   encodingChoice
	converters []converter // one per layout field
}

// builder threads the configuration through the initialisation stages and
// yields a table only when every stage succeeded.
type builder struct {
	cfg ReaderConfig
	src io.Reader
	log *slog.Logger
	t   table
}

func buildTable(src io.Reader, cfg ReaderConfig, log *slog.Logger) (*table, error) {
	b := &builder{cfg: cfg, src: src, log: log}
	err := b.initHeader()
	if err != nil {
		return nil, err
	}
	err = b.initFields()
	if err != nil {
		return nil, err
	}
	err = b.initEncoding()
	if err != nil {
		return nil, err
	}
	err = b.initConverters()
	if err != nil {
		return nil, err
	}
	t := b.t
	return &t, nil
}

func (b *builder) initHeader() error {
	header, err := readHeader(b.src)
	if err != nil {
		return err
	}
	b.t.header = header
	b.log.Debug("read dbf header",
		"signature", header.Signature,
		"dialect", header.Dialect(),
		"records", header.NumRecords,
		"header_length", header.HeaderLength,
		"lang_code", header.LanguageCode)
	return nil
}

func (b *builder) initFields() error {
	physical, err := readDescriptors(b.src, b.t.header.fieldCount())
	if err != nil {
		return err
	}
	if err := readTerminator(b.src); err != nil {
		return err
	}
	fields, err := projectFields(physical, b.cfg.Fields)
	if err != nil {
		return err
	}
	b.t.physical = physical
	b.t.fields = fields
	b.t.layout = newLayout(fields)
	b.log.Debug("resolved record layout", "fields", len(fields), "record_size", b.t.layout.recordSize)
	return nil
}

func (b *builder) initEncoding() error {
	choice, err := resolveEncoding(b.t.header.LanguageCode, b.cfg.Encoding, b.cfg.RawCharacters)
	if err != nil {
		return err
	}
	b.t.encoding = choice
	b.log.Debug("resolved encoding", "encoding", choice.name(), "builtin", choice.builtin, "explicit", choice.explicit)
	return nil
}

func (b *builder) initConverters() error {
	converters, err := buildConverters(b.t.layout.fields, b.t.encoding.charset)
	if err != nil {
		return err
	}
	b.t.converters = converters
	return nil
}

func buildConverters(fields []Field, cs Charset) ([]converter, error) {
	rules := conversionRules(cs)
	converters := make([]converter, len(fields))
	for i, f := range fields {
		conv, err := dispatch(rules, f, cs != nil)
		if err != nil {
			return nil, err
		}
		converters[i] = conv
	}
	return converters, nil
}
