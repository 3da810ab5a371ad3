package sql

import "github.com/milaboratory/ptabler/value"

// Row is a single tuple of scalar values, positional and aligned to a
// Schema. A nil entry represents SQL-style null.
type Row []interface{}

// NewRow builds a Row from its values, mirroring the teacher's
// sql.NewRow(...) constructor used throughout its expression tests.
func NewRow(values ...interface{}) Row {
	return Row(values)
}

// Column describes one field of a Schema: its name and declared type.
type Column struct {
	Name string
	Type value.Type
}

// Schema is an ordered list of columns. Column order is row order: Row[i]
// corresponds to Schema[i].
type Schema []Column

// IndexOf returns the position of name in the schema, or -1 if absent.
func (s Schema) IndexOf(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the column names in schema order, used in "table not
// found"/"column not found" error messages.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}
