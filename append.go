package ydbf

import (
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"
)

// AppendConfig tunes Append. Encoding and RawCharacters work as in
// ReaderConfig.
type AppendConfig struct {
	Encoding      string
	RawCharacters bool
	// Date is stored as the last update date. Defaults to today.
	Date   time.Time
	Logger *slog.Logger
}

type appendFile interface {
	io.ReadWriteSeeker
	Truncate(size int64) error
	Sync() error
}

type appender struct {
	f       appendFile
	t       *table
	log     *slog.Logger
	dataEnd int64
	oldDate [3]byte
}

// Append adds records at the end of an existing file, then updates the
// record count and the last update date. Every record is encoded before the
// file is touched; if writing fails the file is rolled back to its previous
// content.
func Append(fileName string, records []Record, cfg AppendConfig) error {
	f, err := os.OpenFile(fileName, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return appendRecords(f, records, cfg)
}

func appendRecords(f appendFile, records []Record, cfg AppendConfig) error {
	log := cfg.Logger
	if log == nil {
		log = discardLogger
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	t, err := buildTable(f, ReaderConfig{Encoding: cfg.Encoding, RawCharacters: cfg.RawCharacters}, log)
	if err != nil {
		return err
	}
	a := &appender{
		f:       f,
		t:       t,
		log:     log,
		dataEnd: int64(t.header.HeaderLength) + int64(t.layout.recordSize)*int64(t.header.NumRecords),
	}

	// encode first, a bad record must not leave a partial write behind
	buf := make([]byte, 0, len(records)*t.layout.recordSize+1)
	for i, rec := range records {
		b, err := encodeRecord(t.layout, t.converters, int(t.header.NumRecords)+i, rec, t.encoding.name(), t.header.LanguageCode)
		if err != nil {
			return err
		}
		buf = append(buf, b...)
	}
	buf = append(buf, EOF)

	if err := a.readOldDate(); err != nil {
		return err
	}
	if err := a.saveRecords(buf); err != nil {
		return errors.Join(err, a.rollbackRecord())
	}
	if err := a.saveNumRecords(uint32(len(records))); err != nil {
		return errors.Join(err, a.rollbackRecord())
	}
	if err := a.saveUpdateTime(cfg.Date); err != nil {
		return errors.Join(err, a.rollbackNumRecords(), a.rollbackRecord())
	}
	// sync to disk, roll everything back when it fails
	if err := a.f.Sync(); err != nil {
		return errors.Join(err, a.rollbackUpdateTime(), a.rollbackNumRecords(), a.rollbackRecord())
	}
	log.Debug("appended records", "records", len(records), "total", int(t.header.NumRecords)+len(records))
	return nil
}

func (a *appender) readOldDate() error {
	if _, err := a.f.Seek(1, io.SeekStart); err != nil {
		return err
	}
	_, err := io.ReadFull(a.f, a.oldDate[:])
	return err
}

// saveRecords writes over the end-of-file marker.
func (a *appender) saveRecords(buf []byte) error {
	if _, err := a.f.Seek(a.dataEnd, io.SeekStart); err != nil {
		return err
	}
	_, err := a.f.Write(buf)
	return err
}

func (a *appender) rollbackRecord() error {
	a.log.Warn("rolling back appended records", "size", a.dataEnd+1)
	if err := a.f.Truncate(a.dataEnd); err != nil {
		return err
	}
	if _, err := a.f.Seek(a.dataEnd, io.SeekStart); err != nil {
		return err
	}
	_, err := a.f.Write([]byte{EOF})
	return err
}

func (a *appender) saveNumRecords(appendNum uint32) error {
	if _, err := a.f.Seek(4, io.SeekStart); err != nil {
		return err
	}
	return binary.Write(a.f, binary.LittleEndian, a.t.header.NumRecords+appendNum)
}

func (a *appender) rollbackNumRecords() error {
	if _, err := a.f.Seek(4, io.SeekStart); err != nil {
		return err
	}
	return binary.Write(a.f, binary.LittleEndian, a.t.header.NumRecords)
}

func (a *appender) saveUpdateTime(date time.Time) error {
	if date.IsZero() {
		date = time.Now()
	}
	year, month, day := date.Date()
	if _, err := a.f.Seek(1, io.SeekStart); err != nil {
		return err
	}
	_, err := a.f.Write([]byte{byte(year - 1900), byte(month), byte(day)})
	return err
}

func (a *appender) rollbackUpdateTime() error {
	if _, err := a.f.Seek(1, io.SeekStart); err != nil {
		return err
	}
	_, err := a.f.Write(a.oldDate[:])
	return err
}
