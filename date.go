package ydbf

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "20060102"

func allDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ParseDate converts an 8-byte YYYYMMDD value into a date. ok is false when
// raw is nil, not 8 bytes long or not all digits. Digits that do not form a
// calendar date are an error.
func ParseDate(raw []byte) (t time.Time, ok bool, err error) {
	if len(raw) != 8 || !allDigits(raw) {
		return time.Time{}, false, nil
	}
	t, err = time.Parse(dateLayout, string(raw))
	if err != nil {
		return time.Time{}, false, formatErrorf("invalid date %q: %v", raw, err)
	}
	return t, true, nil
}

// FormatDate renders a date as 8 zero-padded YYYYMMDD bytes.
func FormatDate(t time.Time) []byte {
	y, m, d := t.Date()
	return []byte(fmt.Sprintf("%04d%02d%02d", y, int(m), d))
}

// DateToDisplay reorders a YYYYMMDD value as DD.MM.YYYY, following the
// null rules of ParseDate.
func DateToDisplay(raw []byte) (string, bool) {
	if len(raw) != 8 || !allDigits(raw) {
		return "", false
	}
	s := string(raw)
	return s[6:8] + "." + s[4:6] + "." + s[:4], true
}

// DisplayToDate converts DD.MM.YYYY into YYYYMMDD bytes.
func DisplayToDate(s string) ([]byte, error) {
	if len(s) != 10 {
		return nil, formatErrorf("date string must be 10 symbols (DD.MM.YYYY) length instead of %d", len(s))
	}
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return nil, formatErrorf("date string %q is not DD.MM.YYYY", s)
	}
	return []byte(parts[2] + parts[1] + parts[0]), nil
}

// headerDate decodes the creation date bytes of the file header. The year
// byte counts from 1900; values before 1950 are taken as 2000-based, since
// some writers store 2008 as 0x08.
func headerDate(year, month, day byte) (time.Time, error) {
	y := int(year) + 1900
	if y < 1950 {
		y += 100
	}
	t := time.Date(y, time.Month(month), int(day), 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(month) || t.Day() != int(day) {
		return time.Time{}, formatErrorf("invalid header date %d-%02d-%02d", y, month, day)
	}
	return t, nil
}
