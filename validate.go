package ydbf

import "errors"

// check is one consistency assertion over an opened table. size is the
// physical size of the storage, or -1 when unknown.
type check func(t *table, size int64) error

var consistencyChecks = []check{
	checkRecordSize,
	checkFieldCount,
	checkFieldBounds,
	checkFileSize,
}

// Validate runs the consistency checks and joins every failure.
func (r *Reader) Validate() error {
	size, ok := r.physicalSize()
	if !ok {
		size = -1
	}
	var errs []error
	for _, c := range consistencyChecks {
		if err := c(r.t, size); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		r.log.Debug("consistency checks failed", "failures", len(errs))
		return err
	}
	return nil
}

func checkRecordSize(t *table, _ int64) error {
	size := t.layout.recordSize
	if size <= 1 {
		return structuralf("length of record must be >1, got %d", size)
	}
	if sig := t.header.Signature; (sig == DBase3 || sig == DBase4) && size >= 4000 {
		return structuralf("length of record must be <4000 B for dBASE III and IV, got %d", size)
	}
	if size >= 32*1024 {
		return structuralf("length of record must be <32KB, got %d", size)
	}
	return nil
}

func checkFieldCount(t *table, _ int64) error {
	n := len(t.physical)
	if n == 0 {
		return structuralf("the dbf file must have at least one field")
	}
	switch t.header.Signature {
	case DBase3:
		if n >= 128 {
			return structuralf("number of fields in dBASE III must be <128, got %d", n)
		}
	case DBase4:
		if n >= 256 {
			return structuralf("number of fields in dBASE IV must be <256, got %d", n)
		}
	}
	return nil
}

func checkFieldBounds(t *table, _ int64) error {
	for _, f := range t.fields {
		switch {
		case f.Type == Numeral && f.Size >= 20:
			return structuralf("size of numeral field must be <20 (field '%s', size %d)", f.Name, f.Size)
		case f.Type == Character && f.Size >= 255:
			return structuralf("size of character field must be <255 (field '%s', size %d)", f.Name, f.Size)
		case f.Type == Logical && f.Size != 1:
			return structuralf("size of logical field must be 1 (field '%s', size %d)", f.Name, f.Size)
		}
	}
	return nil
}

// checkFileSize compares the logical size with the storage size; the extra
// byte is the end-of-file marker.
func checkFileSize(t *table, size int64) error {
	if size < 0 {
		return nil
	}
	logical := int64(t.header.HeaderLength) + 1 + int64(t.header.NumRecords)*int64(t.layout.recordSize)
	if logical != size {
		return structuralf("logical size %d (calculated from file structure and number of records) should be equal to size of file %d", logical, size)
	}
	return nil
}
