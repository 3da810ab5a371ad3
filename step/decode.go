package step

import (
	"encoding/json"

	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql/expression/decode"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrUnknownTag is a decode error (§7.1): an unrecognized step `type`.
var ErrUnknownTag = errors.NewKind("unknown step tag %q")

// ErrMalformed is a decode error for a step whose JSON shape doesn't
// match its expected fields.
var ErrMalformed = errors.NewKind("malformed %q step: %s")

type tagOnly struct {
	Type string `json:"type"`
}

// Decode recognizes the `type` discriminator of raw and dispatches to the
// matching Step constructor (§6).
func Decode(raw json.RawMessage) (Step, error) {
	var head tagOnly
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, ErrMalformed.New("<unknown>", err.Error())
	}

	switch head.Type {
	case "read_csv":
		return decodeReadCSV(raw)
	case "read_ndjson":
		return decodeReadNDJSON(raw)
	case "write_csv":
		return decodeWriteCSV(raw)
	case "write_ndjson":
		return decodeWriteNDJSON(raw)
	case "write_json":
		return decodeWriteJSON(raw)
	case "add_columns":
		return decodeAddColumns(raw)
	case "with_columns":
		return decodeWithColumns(raw)
	case "select":
		return decodeSelect(raw)
	case "without_columns":
		return decodeWithoutColumns(raw)
	case "filter":
		return decodeFilter(raw)
	case "join":
		return decodeJoin(raw)
	case "aggregate":
		return decodeAggregate(raw)
	case "concatenate":
		return decodeConcatenate(raw)
	case "sort":
		return decodeSort(raw)
	default:
		return nil, ErrUnknownTag.New(head.Type)
	}
}

// DecodeAll decodes an ordered list of raw step documents.
func DecodeAll(raws []json.RawMessage) ([]Step, error) {
	steps := make([]Step, len(raws))
	for i, r := range raws {
		s, err := Decode(r)
		if err != nil {
			return nil, err
		}
		steps[i] = s
	}
	return steps, nil
}

type schemaEntryWire struct {
	Column    string  `json:"column"`
	Type      string  `json:"type"`
	NullValue *string `json:"nullValue"`
}

func toSchemaEntries(wires []schemaEntryWire) []SchemaEntry {
	out := make([]SchemaEntry, len(wires))
	for i, w := range wires {
		out[i] = SchemaEntry{Column: w.Column, Type: w.Type, NullValue: w.NullValue}
	}
	return out
}

func decodeReadCSV(raw json.RawMessage) (Step, error) {
	var w struct {
		Table     string            `json:"table"`
		File      string            `json:"file"`
		Delimiter string            `json:"delimiter"`
		Schema    []schemaEntryWire `json:"schema"`
		Columns   []string          `json:"columns"`
		NRows     *int              `json:"nRows"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("read_csv", err.Error())
	}
	delim := ','
	if w.Delimiter != "" {
		delim = []rune(w.Delimiter)[0]
	}
	return &ReadCSV{
		Table: w.Table, File: w.File, Delimiter: delim,
		Schema: toSchemaEntries(w.Schema), Columns: w.Columns, NRows: w.NRows,
	}, nil
}

func decodeReadNDJSON(raw json.RawMessage) (Step, error) {
	var w struct {
		Table   string            `json:"table"`
		File    string            `json:"file"`
		Schema  []schemaEntryWire `json:"schema"`
		Columns []string          `json:"columns"`
		NRows   *int              `json:"nRows"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("read_ndjson", err.Error())
	}
	return &ReadNDJSON{
		Table: w.Table, File: w.File,
		Schema: toSchemaEntries(w.Schema), Columns: w.Columns, NRows: w.NRows,
	}, nil
}

func decodeWriteCSV(raw json.RawMessage) (Step, error) {
	var w struct {
		Table     string   `json:"table"`
		File      string   `json:"file"`
		Delimiter string   `json:"delimiter"`
		Columns   []string `json:"columns"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("write_csv", err.Error())
	}
	delim := ','
	if w.Delimiter != "" {
		delim = []rune(w.Delimiter)[0]
	}
	return &WriteCSV{Table: w.Table, File: w.File, Delimiter: delim, Columns: w.Columns}, nil
}

func decodeWriteNDJSON(raw json.RawMessage) (Step, error) {
	var w struct {
		Table   string   `json:"table"`
		File    string   `json:"file"`
		Columns []string `json:"columns"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("write_ndjson", err.Error())
	}
	return &WriteNDJSON{Table: w.Table, File: w.File, Columns: w.Columns}, nil
}

func decodeWriteJSON(raw json.RawMessage) (Step, error) {
	var w struct {
		Table   string   `json:"table"`
		File    string   `json:"file"`
		Columns []string `json:"columns"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("write_json", err.Error())
	}
	return &WriteJSON{Table: w.Table, File: w.File, Columns: w.Columns}, nil
}

type columnSpecWire struct {
	Name       string          `json:"name"`
	Expression json.RawMessage `json:"expression"`
}

func toColumnSpecsFromWire(wires []columnSpecWire) ([]ColumnSpec, error) {
	out := make([]ColumnSpec, len(wires))
	for i, w := range wires {
		expr, err := decode.Decode(w.Expression)
		if err != nil {
			return nil, err
		}
		out[i] = ColumnSpec{Name: w.Name, Expression: expr}
	}
	return out, nil
}

func decodeAddColumns(raw json.RawMessage) (Step, error) {
	var w struct {
		Table   string           `json:"table"`
		Columns []columnSpecWire `json:"columns"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("add_columns", err.Error())
	}
	columns, err := toColumnSpecsFromWire(w.Columns)
	if err != nil {
		return nil, err
	}
	return &AddColumns{Table: w.Table, Columns: columns}, nil
}

func decodeWithColumns(raw json.RawMessage) (Step, error) {
	var w struct {
		Table   string           `json:"table"`
		Columns []columnSpecWire `json:"columns"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("with_columns", err.Error())
	}
	columns, err := toColumnSpecsFromWire(w.Columns)
	if err != nil {
		return nil, err
	}
	return &WithColumns{Table: w.Table, Columns: columns}, nil
}

func decodeSelect(raw json.RawMessage) (Step, error) {
	var w struct {
		Table   string   `json:"table"`
		Columns []string `json:"columns"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("select", err.Error())
	}
	return &Select{Table: w.Table, Columns: w.Columns}, nil
}

func decodeWithoutColumns(raw json.RawMessage) (Step, error) {
	var w struct {
		Table   string   `json:"table"`
		Columns []string `json:"columns"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("without_columns", err.Error())
	}
	return &WithoutColumns{Table: w.Table, Columns: w.Columns}, nil
}

func decodeFilter(raw json.RawMessage) (Step, error) {
	var w struct {
		InputTable  string          `json:"inputTable"`
		OutputTable string          `json:"outputTable"`
		Condition   json.RawMessage `json:"condition"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("filter", err.Error())
	}
	cond, err := decode.Decode(w.Condition)
	if err != nil {
		return nil, err
	}
	return &Filter{InputTable: w.InputTable, OutputTable: w.OutputTable, Condition: cond}, nil
}

func decodeJoin(raw json.RawMessage) (Step, error) {
	var w struct {
		LeftTable    string            `json:"leftTable"`
		RightTable   string            `json:"rightTable"`
		OutputTable  string            `json:"outputTable"`
		How          string            `json:"how"`
		LeftOn       []string          `json:"leftOn"`
		RightOn      []string          `json:"rightOn"`
		LeftColumns  map[string]string `json:"leftColumns"`
		RightColumns map[string]string `json:"rightColumns"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("join", err.Error())
	}
	return &Join{
		LeftTable: w.LeftTable, RightTable: w.RightTable, OutputTable: w.OutputTable,
		How: w.How, LeftOn: w.LeftOn, RightOn: w.RightOn,
		LeftColumns: w.LeftColumns, RightColumns: w.RightColumns,
	}, nil
}

type aggSpecWire struct {
	Name   string `json:"name"`
	Column string `json:"column"`
	Func   string `json:"func"`
}

func decodeAggregate(raw json.RawMessage) (Step, error) {
	var w struct {
		InputTable   string        `json:"inputTable"`
		OutputTable  string        `json:"outputTable"`
		GroupBy      []string      `json:"groupBy"`
		Aggregations []aggSpecWire `json:"aggregations"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("aggregate", err.Error())
	}
	aggs := make([]memory.AggSpec, len(w.Aggregations))
	for i, a := range w.Aggregations {
		aggs[i] = memory.AggSpec{Name: a.Name, Column: a.Column, Func: a.Func}
	}
	return &Aggregate{InputTable: w.InputTable, OutputTable: w.OutputTable, GroupBy: w.GroupBy, Aggregations: aggs}, nil
}

func decodeConcatenate(raw json.RawMessage) (Step, error) {
	var w struct {
		Tables      []string `json:"tables"`
		OutputTable string   `json:"outputTable"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("concatenate", err.Error())
	}
	return &Concatenate{Tables: w.Tables, OutputTable: w.OutputTable}, nil
}

func decodeSort(raw json.RawMessage) (Step, error) {
	var w struct {
		Table      string   `json:"table"`
		By         []string `json:"by"`
		Descending []bool   `json:"descending"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("sort", err.Error())
	}
	return &Sort{Table: w.Table, By: w.By, Descending: w.Descending}, nil
}
