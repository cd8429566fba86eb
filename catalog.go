package ydbf

// Field types.
const (
	Character FieldType = 'C'
	Numeral   FieldType = 'N'
	Date      FieldType = 'D'
	Logical   FieldType = 'L'
)

// FieldType is the one-byte type tag of a field descriptor.
type FieldType byte

func (t FieldType) String() string { return string(rune(t)) }

// Known reports whether t is one of the four supported type tags.
func (t FieldType) Known() bool {
	switch t {
	case Character, Numeral, Date, Logical:
		return true
	}
	return false
}

const (
	SPACE      = 0x20
	EOF        = 0x1A
	NUL        = 0x00
	TERMINATOR = 0x0D

	headerSize     = 32
	descriptorSize = 32
	maxNameLength  = 10

	// DeletionFlag is the name of the synthetic first field of every record.
	DeletionFlag = "_deletion_flag"
)

// rawHeader is the on-disk layout of the 32-byte file header.
type rawHeader struct {
	Signature        byte
	LastUpdateYear   byte
	LastUpdateMonth  byte
	LastUpdateDay    byte
	NumRecords       uint32
	HeaderLength     uint16
	RecordLength     uint16
	Reserved         [2]byte
	Flag             byte
	EncryptFlag      byte
	Reserved2        [12]byte
	MDXFlag          byte
	LanguageDriverID byte
	Reserved3        [2]byte
}

// rawDescriptor is the on-disk layout of a 32-byte field descriptor.
type rawDescriptor struct {
	Name       [11]byte
	Type       byte
	Reserved1  [4]byte
	Length     byte
	Decimal    byte
	Reserved2  [2]byte
	WorkAreaID byte
	Reserved3  [10]byte
	Flag       byte
}

// Language is one entry of the language driver table.
type Language struct {
	Code     byte
	Encoding string
	Label    string
}

// languages is ordered; when two codes share an encoding the later one wins
// in the reverse lookup.
var languages = []Language{
	{0x00, "ascii", "ASCII"},
	{0x01, "cp437", "DOS USA"},
	{0x02, "cp850", "DOS Multilingual"},
	{0x03, "cp1252", "Windows ANSI"},
	{0x04, "mac_roman", "Standard Macintosh"},
	{0x64, "cp852", "EE MS-DOS"},
	{0x65, "cp866", "Russian MS-DOS"},
	{0x66, "cp865", "Nordic MS-DOS"},
	{0x67, "cp861", "Icelandic MS-DOS"},
	{0x6A, "cp737", "Greek MS-DOS (437G)"},
	{0x6B, "cp857", "Turkish MS-DOS"},
	{0x96, "mac_cyrillic", "Russian Macintosh"},
	{0x97, "mac_latin2", "Eastern Europe Macintosh"},
	{0x98, "mac_greek", "Greek Macinstosh"},
	{0xC8, "cp1250", "Windows EE"},
	{0xC9, "cp1251", "Russian Windows"},
	{0xCA, "cp1254", "Turkish Windows"},
	{0xCB, "cp1253", "Greek Windows"},
	{0x4D, "cp936", "Chinese GBK (PRC)"},
	{0x7A, "cp936", "Chinese Simplified (PRC, Singapore) Windows"},
}

var (
	// Encodings maps a language driver code to its encoding entry.
	Encodings = make(map[byte]Language, len(languages))
	// ReverseEncodings maps an encoding name back to its language driver code.
	ReverseEncodings = make(map[string]Language, len(languages))
)

func init() {
	for _, l := range languages {
		Encodings[l.Code] = l
		ReverseEncodings[l.Encoding] = l
	}
}

// Signatures names the dialects known by signature byte. Only the
// SupportedSignatures can be read; the rest are used in error messages.
var Signatures = map[byte]string{
	0x02: "FoxBase",
	0x03: "dBASE III",
	0x04: "dBASE IV",
	0x05: "dBASE V",
	0x30: "Visual FoxPro",
	0x31: "Visual FoxPro with AutoIncrement field",
	0x43: "dBASE IV with SQL table and memo file",
	0x7B: "dBASE IV with memo file",
	0x83: "dBASE III with memo file",
	0x8B: "dBASE IV with memo file",
	0x8E: "dBASE IV with SQL table",
	0xB3: ".dbv and .dbt memo (Flagship)",
	0xCB: "dBASE IV with SQL table and memo file",
	0xE5: "Clipper SIX driver with SMT memo field",
	0xF5: "FoxPro with memo field",
	0xFB: "FoxPro",
}

const (
	DBase3 byte = 0x03
	DBase4 byte = 0x04
	DBase5 byte = 0x05
)

// SupportedSignatures lists the dialects this package reads and writes.
var SupportedSignatures = []byte{DBase3, DBase4, DBase5}

func supportedSignature(sig byte) bool {
	for _, s := range SupportedSignatures {
		if s == sig {
			return true
		}
	}
	return false
}

// DialectName returns a human label for a signature byte.
func DialectName(sig byte) string {
	if name, ok := Signatures[sig]; ok {
		return name
	}
	return "UNKNOWN"
}
