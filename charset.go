package ydbf

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/axgle/mahonia"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Charset converts Character field bytes to text and back.
type Charset interface {
	Name() string
	Decode(b []byte) (string, error)
	Encode(s string) ([]byte, error)
}

var builtinCharsets = map[string]encoding.Encoding{
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"cp852":        charmap.CodePage852,
	"cp865":        charmap.CodePage865,
	"cp866":        charmap.CodePage866,
	"cp1250":       charmap.Windows1250,
	"cp1251":       charmap.Windows1251,
	"cp1252":       charmap.Windows1252,
	"cp1253":       charmap.Windows1253,
	"cp1254":       charmap.Windows1254,
	"mac_roman":    charmap.Macintosh,
	"mac_cyrillic": charmap.MacintoshCyrillic,
	"cp936":        simplifiedchinese.GBK,
}

// LookupCharset finds a charset by name. Names of the language driver table
// are served first; any other name is looked up in the IANA registry and
// then among the mahonia charsets. It returns nil when nothing matches.
func LookupCharset(name string) Charset {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil
	}
	if key == "ascii" || key == "us-ascii" {
		return asciiCharset{}
	}
	if enc, ok := builtinCharsets[key]; ok {
		return &textCharset{name: key, enc: enc}
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return &textCharset{name: key, enc: enc}
	}
	for _, candidate := range mahoniaNames(key) {
		if cs := mahonia.GetCharset(candidate); cs != nil {
			return &mahoniaCharset{name: key, cs: cs}
		}
	}
	return nil
}

// mahoniaAliases maps language driver names that mahonia registers under an
// unrelated name.
var mahoniaAliases = map[string]string{
	"mac_latin2": "x-mac-ce",
}

// mahoniaNames lists spellings under which mahonia may register a code page.
func mahoniaNames(key string) []string {
	names := []string{key}
	if alias, ok := mahoniaAliases[key]; ok {
		names = append(names, alias)
	}
	if digits, ok := strings.CutPrefix(key, "cp"); ok {
		names = append(names, "ibm"+digits, "windows-"+digits)
	}
	if strings.HasPrefix(key, "mac_") {
		names = append(names, "x-"+strings.ReplaceAll(key, "_", "-"))
	}
	return names
}

type textCharset struct {
	name string
	enc  encoding.Encoding
}

func (c *textCharset) Name() string { return c.name }

func (c *textCharset) Decode(b []byte) (string, error) {
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	// undefined bytes come back as the replacement character
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", fmt.Errorf("%q contains bytes undefined in %s", b, c.name)
	}
	return string(out), nil
}

func (c *textCharset) Encode(s string) ([]byte, error) {
	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q cannot be represented in %s: %v", ErrEncode, s, c.name, err)
	}
	return out, nil
}

type mahoniaCharset struct {
	name string
	cs   *mahonia.Charset
}

func (c *mahoniaCharset) Name() string { return c.name }

// Decode converts one character at a time; mahonia substitutes U+FFFD for
// undefined bytes and reports it only through the status.
func (c *mahoniaCharset) Decode(b []byte) (string, error) {
	decode := c.cs.NewDecoder()
	var sb strings.Builder
	for pos := 0; pos < len(b); {
		r, size, status := decode(b[pos:])
		switch {
		case status == mahonia.INVALID_CHAR || status == mahonia.NO_ROOM || size == 0:
			return "", fmt.Errorf("byte 0x%02x at position %d is undefined in %s", b[pos], pos, c.name)
		case status == mahonia.SUCCESS:
			sb.WriteRune(r)
		}
		pos += size
	}
	return sb.String(), nil
}

func (c *mahoniaCharset) Encode(s string) ([]byte, error) {
	encode := c.cs.NewEncoder()
	out := make([]byte, 0, len(s))
	var buf [utf8.UTFMax * 2]byte
	for _, r := range s {
		for {
			n, status := encode(buf[:], r)
			if status == mahonia.INVALID_CHAR || status == mahonia.NO_ROOM {
				return nil, fmt.Errorf("%w: %q cannot be represented in %s", ErrEncode, r, c.name)
			}
			out = append(out, buf[:n]...)
			if status != mahonia.STATE_ONLY {
				break
			}
		}
	}
	return out, nil
}

type asciiCharset struct{}

func (asciiCharset) Name() string { return "ascii" }

func (asciiCharset) Decode(b []byte) (string, error) {
	for i, c := range b {
		if c >= utf8.RuneSelf {
			return "", fmt.Errorf("byte 0x%02x at position %d is not ascii", c, i)
		}
	}
	return string(b), nil
}

func (asciiCharset) Encode(s string) ([]byte, error) {
	for _, r := range s {
		if r >= utf8.RuneSelf {
			return nil, fmt.Errorf("%w: %q cannot be represented in ascii", ErrEncode, s)
		}
	}
	return []byte(s), nil
}

// encodingChoice is the outcome of resolving the text encoding of a stream.
type encodingChoice struct {
	charset  Charset // nil in raw mode
	builtin  string
	explicit string
	langCode byte
}

func (e encodingChoice) name() string {
	if e.charset == nil {
		return ""
	}
	return e.charset.Name()
}

// resolveEncoding picks the charset for Character fields: an explicit name
// always wins, otherwise the language code decides. Raw mode skips
// resolution.
func resolveEncoding(lang byte, explicit string, raw bool) (encodingChoice, error) {
	choice := encodingChoice{explicit: explicit, langCode: lang}
	if l, ok := Encodings[lang]; ok {
		choice.builtin = l.Encoding
	}
	if raw {
		return choice, nil
	}
	name := explicit
	if name == "" {
		name = choice.builtin
	}
	if name == "" {
		return choice, configErrorf("cannot resolve builtin lang code 0x%02x to an encoding and no explicit encoding was given; set an encoding or read characters raw", lang)
	}
	choice.charset = LookupCharset(name)
	if choice.charset == nil {
		return choice, configErrorf("encoding %q is not available", name)
	}
	return choice, nil
}
