// Package memory is the reference columnar-engine adapter (§4.4): an
// in-memory, slice-of-rows implementation of the scan/sink/join/aggregate/
// sort/concat primitives the core composes lazy plans against. Any other
// sufficiently capable columnar engine could stand in its place; this one
// exists so the plan layer has something concrete to drive and collect.
package memory

import (
	"github.com/milaboratory/ptabler/sql"
)

// Table is a fully materialized, row-major table: a schema paired with its
// rows. It is the unit every engine primitive in this package consumes and
// produces.
type Table struct {
	Schema sql.Schema
	Rows   []sql.Row
}

// NewTable builds a Table from an already-computed schema and row set.
func NewTable(schema sql.Schema, rows []sql.Row) *Table {
	return &Table{Schema: schema, Rows: rows}
}

// Column returns the values of the named column across all rows, or an
// error if the table has no such column.
func (t *Table) Column(name string) ([]interface{}, error) {
	idx := t.Schema.IndexOf(name)
	if idx < 0 {
		return nil, sql.ErrColumnNotFound.New(name, t.Schema.Names())
	}
	out := make([]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Project returns a new Table containing only the named columns, in the
// given order and (optionally) renamed, per the `rename` map of
// original name -> new name. rename may be nil.
func (t *Table) Project(columns []string, rename map[string]string) (*Table, error) {
	indices := make([]int, len(columns))
	schema := make(sql.Schema, len(columns))
	for i, name := range columns {
		idx := t.Schema.IndexOf(name)
		if idx < 0 {
			return nil, sql.ErrColumnNotFound.New(name, t.Schema.Names())
		}
		indices[i] = idx
		newName := name
		if rename != nil {
			if mapped, ok := rename[name]; ok {
				newName = mapped
			}
		}
		schema[i] = sql.Column{Name: newName, Type: t.Schema[idx].Type}
	}

	rows := make([]sql.Row, len(t.Rows))
	for r, row := range t.Rows {
		newRow := make(sql.Row, len(indices))
		for i, idx := range indices {
			newRow[i] = row[idx]
		}
		rows[r] = newRow
	}
	return NewTable(schema, rows), nil
}

// Clone returns a shallow copy of the table: a new Rows slice of the same
// length pointing at the same row values, and a copied Schema slice.
func (t *Table) Clone() *Table {
	schema := make(sql.Schema, len(t.Schema))
	copy(schema, t.Schema)
	rows := make([]sql.Row, len(t.Rows))
	copy(rows, t.Rows)
	return NewTable(schema, rows)
}
