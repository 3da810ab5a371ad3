package memory

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// ScanNDJSONOptions mirrors the recognized `read_ndjson` options (§3): no
// delimiter (N/A for line-delimited JSON), the same schema/columns/n_rows
// knobs as CSV.
type ScanNDJSONOptions struct {
	Path    string
	Schema  []ColumnSpec
	Columns []string
	NRows   *int
}

// PeekNDJSONSchema reads only the first record of path and returns the
// schema ScanNDJSON would produce, without scanning the rest of the file —
// the NDJSON analogue of PeekCSVSchema.
func PeekNDJSONSchema(opts ScanNDJSONOptions) (sql.Schema, error) {
	f, err := os.Open(opts.Path)
	if err != nil {
		return nil, ErrIO.New(err.Error())
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		return nil, ErrMalformedInput.New(opts.Path, "file has no records")
	}
	var first map[string]interface{}
	if err := json.Unmarshal(scanner.Bytes(), &first); err != nil {
		return nil, ErrMalformedInput.New(opts.Path, err.Error())
	}
	return buildNDJSONSchema(first, opts.Schema, opts.Columns)
}

// ScanNDJSON reads path as one JSON object per line. Nested objects
// surface as map[string]interface{} column values (consumed by
// struct_field); the declared schema's type overrides apply only to
// scalar-typed fields.
func ScanNDJSON(opts ScanNDJSONOptions) (*Table, error) {
	f, err := os.Open(opts.Path)
	if err != nil {
		return nil, ErrIO.New(err.Error())
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []map[string]interface{}
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec map[string]interface{}
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, ErrMalformedInput.New(opts.Path, err.Error())
		}
		records = append(records, rec)
		if opts.NRows != nil && len(records) >= *opts.NRows {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, ErrIO.New(err.Error())
	}
	if len(records) == 0 {
		return NewTable(sql.Schema{}, nil), nil
	}

	schema, err := buildNDJSONSchema(records[0], opts.Schema, opts.Columns)
	if err != nil {
		return nil, err
	}

	rows := make([]sql.Row, len(records))
	for r, rec := range records {
		row := make(sql.Row, len(schema))
		for i, col := range schema {
			v, present := rec[col.Name]
			if !present || v == nil {
				row[i] = nil
				continue
			}
			if _, isStruct := v.(map[string]interface{}); isStruct {
				row[i] = v
				continue
			}
			coerced, err := value.Coerce(v, col.Type)
			if err != nil {
				return nil, ErrMalformedInput.New(opts.Path, err.Error())
			}
			row[i] = coerced
		}
		rows[r] = row
	}
	return NewTable(schema, rows), nil
}

func buildNDJSONSchema(first map[string]interface{}, specs []ColumnSpec, columns []string) (sql.Schema, error) {
	typeByName := map[string]value.Type{}
	for k, v := range first {
		if _, isStruct := v.(map[string]interface{}); isStruct {
			continue
		}
		typeByName[k] = value.String
		if f, ok := v.(float64); ok {
			if f == float64(int64(f)) {
				typeByName[k] = value.Long
			} else {
				typeByName[k] = value.Double
			}
		}
		if _, ok := v.(bool); ok {
			typeByName[k] = value.Bool
		}
	}
	for _, s := range specs {
		if s.Type != nil {
			typeByName[s.Column] = *s.Type
		}
	}

	names := columns
	if names == nil {
		names = make([]string, 0, len(first))
		for k := range first {
			names = append(names, k)
		}
	}
	schema := make(sql.Schema, len(names))
	for i, n := range names {
		t := typeByName[n]
		schema[i] = sql.Column{Name: n, Type: t}
	}
	return schema, nil
}

// SinkNDJSONOptions mirrors the recognized `write_ndjson` options (§3).
type SinkNDJSONOptions struct {
	Path    string
	Columns []string
}

// SinkNDJSON writes t to opts.Path as one JSON object per line.
func SinkNDJSON(t *Table, opts SinkNDJSONOptions) error {
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

	w := bufio.NewWriter(f)
	for _, row := range t.Rows {
		rec := make(map[string]interface{}, len(t.Schema))
		for i, col := range t.Schema {
			rec[col.Name] = row[i]
		}
		line, err := json.Marshal(rec)
		if err != nil {
			return ErrIO.New(err.Error())
		}
		if _, err := w.Write(line); err != nil {
			return ErrIO.New(err.Error())
		}
		if err := w.WriteByte('\n'); err != nil {
			return ErrIO.New(err.Error())
		}
	}
	return w.Flush()
}

// SinkJSONOptions mirrors the recognized `write_json` options (§3): a
// single JSON array document, as opposed to write_ndjson's one-object-
// per-line form.
type SinkJSONOptions struct {
	Path    string
	Columns []string
}

// SinkJSON writes t to opts.Path as a single JSON array of objects.
func SinkJSON(t *Table, opts SinkJSONOptions) error {
	if opts.Columns != nil {
		projected, err := t.Project(opts.Columns, nil)
		if err != nil {
			return err
		}
		t = projected
	}

	records := make([]map[string]interface{}, len(t.Rows))
	for r, row := range t.Rows {
		rec := make(map[string]interface{}, len(t.Schema))
		for i, col := range t.Schema {
			rec[col.Name] = row[i]
		}
		records[r] = rec
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return ErrIO.New(err.Error())
	}
	if err := os.WriteFile(opts.Path, data, 0o644); err != nil {
		return ErrIO.New(err.Error())
	}
	return nil
}
