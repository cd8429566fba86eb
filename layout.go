package ydbf

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"
	"unicode/utf8"
)

// Field describes one column of a table.
type Field struct {
	Name    string
	Type    FieldType
	Size    int
	Decimal int
}

// Header holds the decoded 32-byte file header.
type Header struct {
	Signature    byte
	Created      time.Time
	NumRecords   uint32
	HeaderLength uint16
	RecordLength uint16 // informational; the record size is computed from the fields
	LanguageCode byte
}

// Dialect returns the dialect name of the signature.
func (h Header) Dialect() string { return DialectName(h.Signature) }

var deletionField = Field{Name: DeletionFlag, Type: Character, Size: 1}

func readHeader(r io.Reader) (Header, error) {
	var raw rawHeader
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return Header{}, err
	}
	if !supportedSignature(raw.Signature) {
		return Header{}, formatErrorf("DBF version '%s' (signature 0x%02x) not supported", DialectName(raw.Signature), raw.Signature)
	}
	created, err := headerDate(raw.LastUpdateYear, raw.LastUpdateMonth, raw.LastUpdateDay)
	if err != nil {
		return Header{}, err
	}
	if raw.HeaderLength < headerSize+1 {
		return Header{}, formatErrorf("header length %d is shorter than %d bytes", raw.HeaderLength, headerSize+1)
	}
	return Header{
		Signature:    raw.Signature,
		Created:      created,
		NumRecords:   raw.NumRecords,
		HeaderLength: raw.HeaderLength,
		RecordLength: raw.RecordLength,
		LanguageCode: raw.LanguageDriverID,
	}, nil
}

// fieldCount is the number of descriptors declared by the header length.
func (h Header) fieldCount() int {
	return (int(h.HeaderLength) - headerSize - 1) / descriptorSize
}

func readDescriptors(r io.Reader, count int) ([]Field, error) {
	fields := make([]Field, 0, count)
	for i := 0; i < count; i++ {
		var descriptor rawDescriptor
		if err := binary.Read(r, binary.LittleEndian, &descriptor); err != nil {
			return nil, err
		}
		index := bytes.IndexByte(descriptor.Name[:], NUL)
		if index == -1 {
			index = len(descriptor.Name)
		}
		name := descriptor.Name[:index]
		if !isASCII(name) {
			return nil, formatErrorf("field #%d has a non-ascii name %q", i, name)
		}
		typ := FieldType(descriptor.Type)
		if !typ.Known() {
			return nil, formatErrorf("unknown type %q on field %s", rune(descriptor.Type), name)
		}
		fields = append(fields, Field{
			Name:    string(name),
			Type:    typ,
			Size:    int(descriptor.Length),
			Decimal: int(descriptor.Decimal),
		})
	}
	return fields, nil
}

func readTerminator(r io.Reader) error {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}
	if b[0] != TERMINATOR {
		return formatErrorf("terminator should be 0x0d but it is 0x%02x; the file is corrupted or not a DBF file", b[0])
	}
	return nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// projectFields applies a caller supplied structure over the physical
// fields. Offsets stay physical; the override may only rename or retype.
func projectFields(physical, override []Field) ([]Field, error) {
	if len(override) == 0 {
		return physical, nil
	}
	if len(override) != len(physical) {
		return nil, configErrorf("field structure has %d fields, file has %d", len(override), len(physical))
	}
	projected := make([]Field, len(override))
	for i, f := range override {
		if f.Size != physical[i].Size {
			return nil, configErrorf("field %s has size %d, file field %s has size %d", f.Name, f.Size, physical[i].Name, physical[i].Size)
		}
		if !f.Type.Known() {
			return nil, configErrorf("unknown type %q on field %s", rune(f.Type), f.Name)
		}
		projected[i] = f
	}
	return projected, nil
}

// layout is the byte layout of one record, deletion flag included.
type layout struct {
	fields     []Field
	offsets    []int
	recordSize int
}

func newLayout(fields []Field) layout {
	l := layout{
		fields:  make([]Field, 0, len(fields)+1),
		offsets: make([]int, 0, len(fields)+1),
	}
	for _, f := range append([]Field{deletionField}, fields...) {
		l.fields = append(l.fields, f)
		l.offsets = append(l.offsets, l.recordSize)
		l.recordSize += f.Size
	}
	return l
}

// slice returns the bytes of field i within a record buffer.
func (l layout) slice(rec []byte, i int) []byte {
	return rec[l.offsets[i] : l.offsets[i]+l.fields[i].Size]
}

// checkDefinition validates a field structure given for writing.
func checkDefinition(fields []Field) error {
	if len(fields) == 0 {
		return configErrorf("field structure is required and must not be empty")
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" || len(f.Name) > maxNameLength || !isASCII([]byte(f.Name)) {
			return configErrorf("field name %q must be 1-%d ascii bytes", f.Name, maxNameLength)
		}
		if _, dup := seen[f.Name]; dup {
			return configErrorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		if !f.Type.Known() {
			return configErrorf("unknown type %q on field %s", rune(f.Type), f.Name)
		}
		if f.Size < 1 || f.Size > 255 || f.Decimal < 0 || f.Decimal > 255 {
			return configErrorf("field %s has size %d and decimal %d, both must fit one byte", f.Name, f.Size, f.Decimal)
		}
		switch {
		case f.Type == Logical && f.Size != 1:
			return configErrorf("logical field %s must have size 1, not %d", f.Name, f.Size)
		case f.Type == Date && f.Size != 8:
			return configErrorf("date field %s must have size 8, not %d", f.Name, f.Size)
		case f.Type == Numeral && f.Decimal > 0 && f.Decimal >= f.Size:
			return configErrorf("numeral field %s must be wider (%d) than its decimals (%d)", f.Name, f.Size, f.Decimal)
		}
	}
	return nil
}

func (f Field) descriptor() rawDescriptor {
	var d rawDescriptor
	copy(d.Name[:], f.Name)
	d.Type = byte(f.Type)
	d.Length = byte(f.Size)
	d.Decimal = byte(f.Decimal)
	return d
}
