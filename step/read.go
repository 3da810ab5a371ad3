package step

import (
	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql/plan"
	"github.com/milaboratory/ptabler/tablespace"
	"github.com/milaboratory/ptabler/value"
)

// SchemaEntry is one entry of a scan step's `schema` option (§3): a
// column's explicit type and/or null sentinel.
type SchemaEntry struct {
	Column    string
	Type      string
	NullValue *string
}

func (e SchemaEntry) toColumnSpec() (memory.ColumnSpec, error) {
	spec := memory.ColumnSpec{Column: e.Column, NullValue: e.NullValue}
	if e.Type != "" {
		t, err := value.ParseType(e.Type)
		if err != nil {
			return memory.ColumnSpec{}, err
		}
		spec.Type = &t
	}
	return spec, nil
}

func toColumnSpecs(entries []SchemaEntry) ([]memory.ColumnSpec, error) {
	specs := make([]memory.ColumnSpec, len(entries))
	for i, e := range entries {
		s, err := e.toColumnSpec()
		if err != nil {
			return nil, err
		}
		specs[i] = s
	}
	return specs, nil
}

// ReadCSV implements `read_csv` (§3, §4.2).
type ReadCSV struct {
	Table     string
	File      string
	Delimiter rune
	Schema    []SchemaEntry
	Columns   []string
	NRows     *int
}

func (r *ReadCSV) Tag() string { return "read_csv" }

func (r *ReadCSV) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	path, err := settings.ResolvePath(r.File)
	if err != nil {
		return nil, nil, err
	}
	specs, err := toColumnSpecs(r.Schema)
	if err != nil {
		return nil, nil, err
	}
	node := plan.NewScanCSV(memory.ScanCSVOptions{
		Path:      path,
		Delimiter: r.Delimiter,
		Schema:    specs,
		Columns:   r.Columns,
		NRows:     r.NRows,
	})
	return space.With(r.Table, node), nil, nil
}

// ReadNDJSON implements `read_ndjson` (§3, §4.2).
type ReadNDJSON struct {
	Table   string
	File    string
	Schema  []SchemaEntry
	Columns []string
	NRows   *int
}

func (r *ReadNDJSON) Tag() string { return "read_ndjson" }

func (r *ReadNDJSON) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	path, err := settings.ResolvePath(r.File)
	if err != nil {
		return nil, nil, err
	}
	specs, err := toColumnSpecs(r.Schema)
	if err != nil {
		return nil, nil, err
	}
	node := plan.NewScanNDJSON(memory.ScanNDJSONOptions{
		Path:    path,
		Schema:  specs,
		Columns: r.Columns,
		NRows:   r.NRows,
	})
	return space.With(r.Table, node), nil, nil
}
