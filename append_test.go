package ydbf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "append.dbf")
	w, err := Create(fileName, simpleFields, WriterConfig{Date: fixedDate})
	require.NoError(t, err)
	require.NoError(t, w.WriteAll(simpleRecords()[:1]))
	require.NoError(t, w.Close())

	later := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, Append(fileName, simpleRecords()[1:], AppendConfig{Date: later}))

	r, err := OpenReader(fileName, ReaderConfig{Strict: true})
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, later, r.Header().Created)

	records, err := r.ReadAll(Scan{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "one", records[0]["VALUE"])
	assert.Equal(t, "two", records[1]["VALUE"])
	assert.Equal(t, int64(3), records[2]["ID"])

	// the result matches writing every record at once
	want := writeFile(t, simpleFields, WriterConfig{Date: later}, simpleRecords()...)
	got, err := os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Empty(t, CompareBytes(want, got))
}

func TestAppend_BadRecordLeavesFileUntouched(t *testing.T) {
	path := peopleFixture().file(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = Append(path, []Record{
		{"NAME": "EVE", "AGE": 30, "SALARY": 1.5, "BORN": nil, "ACTIVE": true},
		{"NAME": "FRANKENSTEIN", "AGE": 30, "SALARY": 1.5, "BORN": nil, "ACTIVE": true},
	}, AppendConfig{})
	assert.ErrorIs(t, err, ErrOverflow)
	var overflow *OverflowError
	require.True(t, errors.As(err, &overflow))
	assert.Equal(t, 5, overflow.Record)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// failingFile fails the write at a given call and records what it did.
type failingFile struct {
	*os.File
	writes    int
	failAt    int
	syncFails bool
}

var errInjected = errors.New("injected failure")

func (f *failingFile) Write(p []byte) (int, error) {
	f.writes++
	if f.writes == f.failAt {
		return 0, errInjected
	}
	return f.File.Write(p)
}

func (f *failingFile) Sync() error {
	if f.syncFails {
		return errInjected
	}
	return f.File.Sync()
}

func TestAppend_Rollback(t *testing.T) {
	record := Record{"NAME": "EVE", "AGE": 30, "SALARY": 1.5, "BORN": nil, "ACTIVE": true}
	tests := []struct {
		name string
		file func(*os.File) *failingFile
	}{
		{"records", func(f *os.File) *failingFile { return &failingFile{File: f, failAt: 1} }},
		{"record count", func(f *os.File) *failingFile { return &failingFile{File: f, failAt: 2} }},
		{"update date", func(f *os.File) *failingFile { return &failingFile{File: f, failAt: 3} }},
		{"sync", func(f *os.File) *failingFile { return &failingFile{File: f, syncFails: true} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := peopleFixture().file(t)
			before, err := os.ReadFile(path)
			require.NoError(t, err)

			f, err := os.OpenFile(path, os.O_RDWR, 0)
			require.NoError(t, err)
			defer f.Close()
			err = appendRecords(tt.file(f), []Record{record}, AppendConfig{Date: fixedDate})
			assert.ErrorIs(t, err, errInjected)

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Empty(t, CompareBytes(before, after))
		})
	}
}

func TestAppend_MissingFile(t *testing.T) {
	err := Append(filepath.Join(t.TempDir(), "missing.dbf"), nil, AppendConfig{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
