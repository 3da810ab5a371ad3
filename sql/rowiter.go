package sql

import "io"

// RowIter streams rows one at a time, matching the teacher's sql.RowIter
// contract. Implementations return io.EOF from Next once exhausted.
type RowIter interface {
	Next(ctx *Context) (Row, error)
	Close(ctx *Context) error
}

// RowsOf drains iter into a slice and closes it.
func RowsOf(ctx *Context, iter RowIter) ([]Row, error) {
	defer iter.Close(ctx)
	var rows []Row
	for {
		row, err := iter.Next(ctx)
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// sliceRowIter adapts an in-memory []Row to RowIter.
type sliceRowIter struct {
	rows []Row
	pos  int
}

// NewSliceRowIter returns a RowIter over an already-materialized slice of
// rows.
func NewSliceRowIter(rows []Row) RowIter {
	return &sliceRowIter{rows: rows}
}

func (it *sliceRowIter) Next(ctx *Context) (Row, error) {
	if it.pos >= len(it.rows) {
		return nil, io.EOF
	}
	row := it.rows[it.pos]
	it.pos++
	return row, nil
}

func (it *sliceRowIter) Close(ctx *Context) error { return nil }
