package ydbf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderRecord struct {
	OrderType string    `dbf:"ORDER_TYPE"`
	StockCode string    `dbf:"STOCK_CODE"`
	Volume    int       `dbf:"VOLUME"`
	ModePrice float64   `dbf:"MODE_PRICE"`
	Inserted  time.Time `dbf:"INSERTED"`
	Filled    bool      `dbf:"FILLED"`
	Note      string    `dbf:"-"`
}

var orderFields = []Field{
	{Name: "ORDER_TYPE", Type: Character, Size: 2},
	{Name: "STOCK_CODE", Type: Character, Size: 6},
	{Name: "VOLUME", Type: Numeral, Size: 8},
	{Name: "MODE_PRICE", Type: Numeral, Size: 10, Decimal: 3},
	{Name: "INSERTED", Type: Date, Size: 8},
	{Name: "FILLED", Type: Logical, Size: 1},
}

func TestOpen_WriteThenRead(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "orders.dbf")
	orders := []orderRecord{
		{OrderType: "23", StockCode: "000001", Volume: 100, ModePrice: 2.35, Inserted: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Filled: true},
		{OrderType: "24", StockCode: "600519", Volume: 5, ModePrice: 1688.5, Note: "ignored"},
	}

	h, err := Open(fileName, Write, Options{Fields: orderFields, Date: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	w := h.(*Writer)
	assert.Equal(t, orderFields, w.Fields())
	for i := range orders {
		rec, err := Marshal(&orders[i])
		require.NoError(t, err)
		require.NoError(t, w.Write(rec))
	}
	require.NoError(t, w.Close())

	h, err = Open(fileName, Read, Options{Strict: true})
	require.NoError(t, err)
	r := h.(*Reader)
	defer r.Close()
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), r.Header().Created)
	assert.Equal(t, byte(0x00), r.Header().LanguageCode)

	var got []orderRecord
	for rec, err := range r.Records(Scan{}) {
		require.NoError(t, err)
		var o orderRecord
		require.NoError(t, Unmarshal(rec, &o))
		got = append(got, o)
	}
	orders[1].Note = ""
	assert.Equal(t, orders, got)
}

func TestOpen_Streams(t *testing.T) {
	var buf bytes.Buffer
	h, err := Open(&buf, Write, Options{Fields: orderFields[:2], Encoding: "cp1251"})
	require.NoError(t, err)
	require.NoError(t, h.(*Writer).Write(Record{"ORDER_TYPE": "Я", "STOCK_CODE": "A"}))
	require.NoError(t, h.Close())

	h, err = Open(bytes.NewReader(buf.Bytes()), Read, Options{})
	require.NoError(t, err)
	records, err := h.(*Reader).ReadAll(Scan{})
	require.NoError(t, err)
	assert.Equal(t, []Record{{"ORDER_TYPE": "Я", "STOCK_CODE": "A"}}, records)
}

func TestOpen_Configuration(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "never.dbf")

	_, err := Open(fileName, "rw", Options{Fields: orderFields})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = Open(fileName, Write, Options{})
	assert.ErrorIs(t, err, ErrConfiguration)
	_, statErr := os.Stat(fileName)
	assert.True(t, os.IsNotExist(statErr), "a rejected open must not create the file")

	_, err = Open(42, Read, Options{})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = Open(fileName, Read, Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
