// Package ydbf reads and writes DBF/XBase tables as streams of records.
//
// A DBF file starts with a 32-byte header followed by one 32-byte
// descriptor per field and a 0x0D terminator. Records follow as fixed-width
// slices, each prefixed by a deletion flag byte (' ' for active records),
// and the file ends with a 0x1A marker. Only the dBASE III, IV and V
// signatures (0x03, 0x04, 0x05) are supported, with Character, Numeral,
// Date and Logical fields; memo fields are not.
//
// Reading:
//
//	r, err := ydbf.OpenReader("simple.dbf", ydbf.ReaderConfig{})
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	for rec, err := range r.Records(ydbf.Scan{}) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(rec["NAME"])
//	}
//
// Character fields are decoded with the encoding named by the language
// code of the header unless ReaderConfig.Encoding overrides it, or kept as
// bytes with ReaderConfig.RawCharacters. Numerals with decimals decode to
// exact *apd.Decimal values, other numerals to int64, dates to time.Time
// (nil when blank) and logicals to bool.
//
// Writing:
//
//	fields := []ydbf.Field{
//	    {Name: "ID", Type: ydbf.Numeral, Size: 4},
//	    {Name: "VALUE", Type: ydbf.Character, Size: 40},
//	    {Name: "UPDATE", Type: ydbf.Date, Size: 8},
//	    {Name: "VISIBLE", Type: ydbf.Logical, Size: 1},
//	}
//	w, err := ydbf.Create("simple.dbf", fields, ydbf.WriterConfig{Encoding: "cp1251"})
//	if err != nil {
//	    return err
//	}
//	if err := w.Write(ydbf.Record{"ID": 1, "VALUE": "ydbf", "UPDATE": time.Now(), "VISIBLE": true}); err != nil {
//	    return err
//	}
//	return w.Close()
//
// Errors match ErrConfiguration, ErrFormat, ErrStructural, ErrDecode,
// ErrEncode and ErrOverflow with errors.Is.
package ydbf
