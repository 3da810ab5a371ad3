package memory

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrIO wraps a file-system failure encountered during scan or sink (§7
// taxonomy item 4).
var ErrIO = errors.NewKind("i/o error: %s")

// ErrMalformedInput is a non-structural parse failure in a scanned file
// (§7 taxonomy item 4): wrong column count, invalid scalar for a declared
// type, and the like.
var ErrMalformedInput = errors.NewKind("malformed input %q: %s")

// ColumnSpec is one entry of a scan's `schema` option (§4.2): an explicit
// type override and/or null sentinel for a named column.
type ColumnSpec struct {
	Column    string
	Type      *value.Type
	NullValue *string
}

// ScanCSVOptions mirrors the recognized `read_csv` options (§3): delimiter,
// explicit per-column schema, a column projection and a row limit.
type ScanCSVOptions struct {
	Path      string
	Delimiter rune
	Schema    []ColumnSpec
	Columns   []string
	NRows     *int
}

// PeekCSVSchema reads only the header line of path and returns the schema
// that ScanCSV would produce for it, without reading any data rows. This
// is the metadata-only read that lets a scan plan answer Schema() without
// violating the "construction does no (row) I/O" laziness property (§8) —
// the same contract Polars' own scan_csv honors, which the original
// implementation is built on.
func PeekCSVSchema(opts ScanCSVOptions) (sql.Schema, error) {
	f, err := os.Open(opts.Path)
	if err != nil {
		return nil, ErrIO.New(err.Error())
	}
	defer f.Close()

	r := newCSVReader(f, opts.Delimiter)
	header, err := r.Read()
	if err != nil {
		return nil, ErrIO.New(err.Error())
	}
	return buildSchema(header, opts.Schema, opts.Columns)
}

// ScanCSV fully reads and parses the CSV file at opts.Path into a Table,
// applying the declared schema, null sentinels, column projection and row
// limit.
func ScanCSV(opts ScanCSVOptions) (*Table, error) {
	f, err := os.Open(opts.Path)
	if err != nil {
		return nil, ErrIO.New(err.Error())
	}
	defer f.Close()

	r := newCSVReader(f, opts.Delimiter)
	header, err := r.Read()
	if err != nil {
		return nil, ErrIO.New(err.Error())
	}

	schema, err := buildSchema(header, opts.Schema, opts.Columns)
	if err != nil {
		return nil, err
	}
	nullValues := nullValueIndex(header, opts.Schema)
	keep := keepIndices(header, opts.Columns)

	var rows []sql.Row
	for {
		if opts.NRows != nil && len(rows) >= *opts.NRows {
			break
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ErrMalformedInput.New(opts.Path, err.Error())
		}
		if len(record) != len(header) {
			return nil, ErrMalformedInput.New(opts.Path, "row has wrong number of fields")
		}

		row := make(sql.Row, len(keep))
		for outIdx, srcIdx := range keep {
			raw := record[srcIdx]
			var cell interface{}
			if null, ok := nullValues[srcIdx]; ok && raw == null {
				cell = nil
			} else {
				coerced, err := value.Coerce(raw, schema[outIdx].Type)
				if err != nil {
					return nil, ErrMalformedInput.New(opts.Path, err.Error())
				}
				cell = coerced
			}
			row[outIdx] = cell
		}
		rows = append(rows, row)
	}

	return NewTable(schema, rows), nil
}

func newCSVReader(f *os.File, delimiter rune) *csv.Reader {
	r := csv.NewReader(f)
	if delimiter == 0 {
		delimiter = ','
	}
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	return r
}

// buildSchema resolves the output schema for a scan: every header column
// defaults to string unless overridden by a ColumnSpec, then the optional
// projection is applied in the requested order.
func buildSchema(header []string, specs []ColumnSpec, columns []string) (sql.Schema, error) {
	typeByName := map[string]value.Type{}
	for _, h := range header {
		typeByName[h] = value.String
	}
	for _, s := range specs {
		if s.Type != nil {
			typeByName[s.Column] = *s.Type
		}
	}

	names := header
	if columns != nil {
		names = columns
	}
	schema := make(sql.Schema, len(names))
	for i, n := range names {
		t, ok := typeByName[n]
		if !ok {
			return nil, sql.ErrColumnNotFound.New(n, header)
		}
		schema[i] = sql.Column{Name: n, Type: t}
	}
	return schema, nil
}

func nullValueIndex(header []string, specs []ColumnSpec) map[int]string {
	byName := map[string]string{}
	for _, s := range specs {
		if s.NullValue != nil {
			byName[s.Column] = *s.NullValue
		}
	}
	out := map[int]string{}
	for i, h := range header {
		if nv, ok := byName[h]; ok {
			out[i] = nv
		}
	}
	return out
}

func keepIndices(header []string, columns []string) []int {
	if columns == nil {
		out := make([]int, len(header))
		for i := range header {
			out[i] = i
		}
		return out
	}
	pos := map[string]int{}
	for i, h := range header {
		pos[h] = i
	}
	out := make([]int, len(columns))
	for i, c := range columns {
		out[i] = pos[c]
	}
	return out
}

// SinkCSVOptions mirrors the recognized `write_csv` options (§3): an
// optional column projection and delimiter.
type SinkCSVOptions struct {
	Path      string
	Delimiter rune
	Columns   []string
}

// SinkCSV writes t to opts.Path, projecting opts.Columns first when set.
func SinkCSV(t *Table, opts SinkCSVOptions) error {
	if opts.Columns != nil {
		projected, err := t.Project(opts.Columns, nil)
		if err != nil {
			return err
		}
		t = projected
	}

	f, err := os.Create(opts.Path)
	if err != nil {
		return ErrIO.New(err.Error())
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if opts.Delimiter != 0 {
		w.Comma = opts.Delimiter
	}
	header := t.Schema.Names()
	if err := w.Write(header); err != nil {
		return ErrIO.New(err.Error())
	}
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, cell := range row {
			if cell == nil {
				record[i] = ""
				continue
			}
			s, _, err := value.AsString(cell)
			if err != nil {
				return ErrIO.New(err.Error())
			}
			record[i] = s
		}
		if err := w.Write(record); err != nil {
			return ErrIO.New(err.Error())
		}
	}
	w.Flush()
	return w.Error()
}
