package ydbf

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture builds DBF bytes by hand, independent of the Writer.
type fixture struct {
	sig              byte
	year, month, day byte
	lang             byte
	fields           []Field
	records          []string // raw records, deletion flag included
	terminator       byte
	noEOF            bool
}

func newFixture(fields []Field, records ...string) fixture {
	return fixture{
		sig:        0x03,
		year:       125,
		month:      1,
		day:        1,
		lang:       0x01,
		fields:     fields,
		records:    records,
		terminator: 0x0D,
	}
}

func (fx fixture) bytes() []byte {
	recordSize := 1
	for _, f := range fx.fields {
		recordSize += f.Size
	}
	var buf bytes.Buffer
	buf.Write([]byte{fx.sig, fx.year, fx.month, fx.day})
	binary.Write(&buf, binary.LittleEndian, uint32(len(fx.records)))
	binary.Write(&buf, binary.LittleEndian, uint16(33+32*len(fx.fields)))
	binary.Write(&buf, binary.LittleEndian, uint16(recordSize))
	buf.Write(make([]byte, 17))
	buf.WriteByte(fx.lang)
	buf.Write(make([]byte, 2))
	for _, f := range fx.fields {
		var name [11]byte
		copy(name[:], f.Name)
		buf.Write(name[:])
		buf.WriteByte(byte(f.Type))
		buf.Write(make([]byte, 4))
		buf.WriteByte(byte(f.Size))
		buf.WriteByte(byte(f.Decimal))
		buf.Write(make([]byte, 14))
	}
	buf.WriteByte(fx.terminator)
	for _, r := range fx.records {
		buf.WriteString(r)
	}
	if !fx.noEOF {
		buf.WriteByte(0x1A)
	}
	return buf.Bytes()
}

func (fx fixture) reader(t *testing.T, cfg ReaderConfig) *Reader {
	t.Helper()
	r, err := NewReader(bytes.NewReader(fx.bytes()), cfg)
	require.NoError(t, err)
	return r
}

func (fx fixture) file(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.dbf")
	require.NoError(t, os.WriteFile(path, fx.bytes(), 0o644))
	return path
}

// pad left-justifies s in n bytes, padLeft right-justifies it.
func pad(s string, n int) string {
	for len(s) < n {
		s += " "
	}
	return s
}

func padLeft(s string, n int) string {
	for len(s) < n {
		s = " " + s
	}
	return s
}

// CompareBytes lists the positions where a and b differ as
// {position, a value, b value}; -1 marks a missing byte.
func CompareBytes(a, b []byte) [][3]int {
	var differences [][3]int

	minLength := min(len(a), len(b))
	for i := 0; i < minLength; i++ {
		if a[i] != b[i] {
			differences = append(differences, [3]int{i, int(a[i]), int(b[i])})
		}
	}
	for i := minLength; i < len(a); i++ {
		differences = append(differences, [3]int{i, int(a[i]), -1})
	}
	for i := minLength; i < len(b); i++ {
		differences = append(differences, [3]int{i, -1, int(b[i])})
	}
	return differences
}
