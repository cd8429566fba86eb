package ydbf

import (
	"io"
	"iter"
)

// Scan selects the record slots of an iteration.
type Scan struct {
	// Start is the index of the first slot.
	Start int
	// Limit caps the number of slots visited, deleted ones included.
	// Zero or less reads to the end.
	Limit int
	// ShowDeleted yields deleted records too, with the deletion flag field.
	ShowDeleted bool
}

// Cursor is a single pass over a range of record slots. Starting a new
// cursor on the same Reader invalidates the previous one.
type Cursor struct {
	r           *Reader
	gen         uint64
	next        int
	stop        int
	showDeleted bool
	index       int
}

// Cursor starts a new iteration described by s.
func (r *Reader) Cursor(s Scan) *Cursor {
	r.gen++
	start := max(s.Start, 0)
	stop := r.Len()
	if s.Limit > 0 && start+s.Limit < stop {
		stop = start + s.Limit
	}
	return &Cursor{
		r:           r,
		gen:         r.gen,
		next:        start,
		stop:        stop,
		showDeleted: s.ShowDeleted,
		index:       -1,
	}
}

// Next returns the next record, or io.EOF when the range is exhausted.
func (c *Cursor) Next() (Record, error) {
	if c.r.closed {
		return nil, ErrClosed
	}
	if c.gen != c.r.gen {
		return nil, ErrCursorInvalidated
	}
	for c.next < c.stop {
		i := c.next
		c.next++
		raw, err := c.r.readRecord(i)
		if err != nil {
			return nil, err
		}
		if raw[0] != SPACE && !c.showDeleted {
			continue
		}
		c.index = i
		return c.r.decode(i, raw, c.showDeleted)
	}
	return nil, io.EOF
}

// Index returns the slot index of the record last returned by Next, or -1.
func (c *Cursor) Index() int { return c.index }

// Records returns a lazy sequence over the slots selected by s. Each
// iteration of the sequence starts a fresh cursor; the sequence stops after
// the first error.
func (r *Reader) Records(s Scan) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		c := r.Cursor(s)
		for {
			rec, err := c.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// ReadAll collects the records selected by s.
func (r *Reader) ReadAll(s Scan) ([]Record, error) {
	var records []Record
	for rec, err := range r.Records(s) {
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}
