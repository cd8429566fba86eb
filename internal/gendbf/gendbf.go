// Package gendbf creates DBF files with random data, which is useful for
// testing.
package gendbf

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/Ulysses-Xu/ydbf"
	"github.com/cockroachdb/apd/v3"
)

type alphabet struct {
	consonants []string
	vowels     []string
}

var (
	latin = alphabet{
		consonants: []string{"b", "d", "g", "h", "k", "l", "m", "n", "p", "r", "s", "t", "z"},
		vowels:     []string{"a", "e", "i", "o", ""},
	}
	cyrillic = alphabet{
		consonants: []string{"б", "д", "г", "х", "к", "л", "м", "н", "п", "р", "с", "т", "з"},
		vowels:     []string{"а", "е", "и", "о", "у"},
	}
)

// most popular field type is a numeral, next character, date and logical
var fieldTypes = []ydbf.FieldType{
	ydbf.Numeral, ydbf.Numeral, ydbf.Numeral, ydbf.Numeral,
	ydbf.Character, ydbf.Character, ydbf.Character,
	ydbf.Date, ydbf.Date,
	ydbf.Logical,
}

var sizeLimits = map[ydbf.FieldType][2]int{
	ydbf.Numeral:   {1, 19},
	ydbf.Character: {1, 254},
	ydbf.Logical:   {1, 1},
	ydbf.Date:      {8, 8},
}

// Generator produces random field structures and records. The same seed
// yields the same data.
type Generator struct {
	rnd *rand.Rand
	// ASCII restricts character values to latin letters; otherwise half of
	// them are cyrillic, which needs a single-byte cyrillic encoding.
	ASCII bool
}

func New(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *Generator) between(lo, hi int) int {
	return lo + g.rnd.IntN(hi-lo+1)
}

// Text returns between size/2 and size runes of pseudo words.
func (g *Generator) Text(size int, ascii bool) string {
	alph := latin
	if !ascii && g.rnd.IntN(2) == 1 {
		alph = cyrillic
	}
	size = g.between(size/2, size)
	var sb strings.Builder
	n := 0
	for n < size {
		for _, s := range []string{alph.consonants[g.rnd.IntN(len(alph.consonants))], alph.vowels[g.rnd.IntN(len(alph.vowels))]} {
			if s != "" {
				sb.WriteString(s)
				n++
			}
		}
		if g.rnd.IntN(6) == 0 {
			sb.WriteByte(' ')
			n++
		}
	}
	runes := []rune(sb.String())
	return string(runes[:size])
}

// Field returns a random field named name.
func (g *Generator) Field(name string) ydbf.Field {
	typ := fieldTypes[g.rnd.IntN(len(fieldTypes))]
	limits := sizeLimits[typ]
	f := ydbf.Field{Name: name, Type: typ, Size: g.between(limits[0], limits[1])}
	if typ == ydbf.Numeral && f.Size > 6 && g.rnd.IntN(2) == 1 {
		f.Decimal = g.between(0, f.Size/2)
	}
	return f
}

// Fields returns n random fields with distinct names.
func (g *Generator) Fields(n int) []ydbf.Field {
	fields := make([]ydbf.Field, 0, n)
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		name := strings.ToUpper(strings.ReplaceAll(g.Text(10, true), " ", "_"))
		if name == "" {
			name = "F"
		}
		for attempt := i; ; attempt++ {
			if _, dup := seen[name]; !dup {
				break
			}
			suffix := strconv.Itoa(attempt)
			name = name[:min(len(name), 10-len(suffix))] + suffix
		}
		seen[name] = struct{}{}
		fields = append(fields, g.Field(name))
	}
	return fields
}

// Value returns a random value fitting f.
func (g *Generator) Value(f ydbf.Field) any {
	switch f.Type {
	case ydbf.Numeral:
		return g.numeral(f)
	case ydbf.Character:
		return g.Text(f.Size, g.ASCII)
	case ydbf.Date:
		return time.Date(g.between(1899, 2030), time.Month(g.between(1, 12)), g.between(1, 28), 0, 0, 0, 0, time.UTC)
	case ydbf.Logical:
		return g.rnd.IntN(2) == 1
	}
	return nil
}

// numeral keeps one position free for the sign or the decimal point.
func (g *Generator) numeral(f ydbf.Field) any {
	digits := f.Size - 1
	if digits == 0 {
		return int64(g.rnd.IntN(10))
	}
	limit := int64(1)
	for i := 0; i < digits; i++ {
		limit *= 10
	}
	n := g.rnd.Int64N(limit)
	if f.Decimal == 0 {
		return n
	}
	return apd.New(n, -int32(f.Decimal))
}

// Record returns a random record for fields; one value in ten is nil.
func (g *Generator) Record(fields []ydbf.Field) ydbf.Record {
	rec := make(ydbf.Record, len(fields))
	for _, f := range fields {
		if g.rnd.IntN(10) == 0 {
			rec[f.Name] = nil
			continue
		}
		rec[f.Name] = g.Value(f)
	}
	return rec
}

// cyrillicEncodings can store every generated text.
var cyrillicEncodings = map[string]struct{}{
	"cp1251":       {},
	"cp866":        {},
	"mac_cyrillic": {},
}

// Options controls GenerateFile.
type Options struct {
	Records  int
	Fields   int
	Encoding string
	Seed     uint64
}

// DefaultOptions mirrors the defaults of the gen command.
func DefaultOptions() Options {
	return Options{Records: 2000, Fields: 20, Encoding: "cp1251", Seed: uint64(time.Now().UnixNano())}
}

// Generate writes the given number of random records to w.
func Generate(w *ydbf.Writer, g *Generator, records int) error {
	fields := w.Fields()
	for i := 0; i < records; i++ {
		if err := w.Write(g.Record(fields)); err != nil {
			return err
		}
	}
	return nil
}

// GenerateFile creates fileName with random fields and records.
func GenerateFile(fileName string, opts Options, cfg ydbf.WriterConfig) ([]ydbf.Field, error) {
	g := New(opts.Seed)
	_, ok := cyrillicEncodings[strings.ToLower(opts.Encoding)]
	g.ASCII = !ok
	fields := g.Fields(opts.Fields)
	cfg.Encoding = opts.Encoding
	w, err := ydbf.Create(fileName, fields, cfg)
	if err != nil {
		return nil, err
	}
	if err := Generate(w, g, opts.Records); err != nil {
		w.Close()
		return nil, err
	}
	return fields, w.Close()
}
