package step_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milaboratory/ptabler/step"
)

func decode(t *testing.T, doc string) step.Step {
	t.Helper()
	s, err := step.Decode(json.RawMessage(doc))
	require.NoError(t, err)
	return s
}

func TestDecodeReadCSV(t *testing.T) {
	s := decode(t, `{"type":"read_csv","table":"t","file":"in.csv","delimiter":";",
		"schema":[{"column":"age","type":"long","nullValue":"NA"}],"nRows":10}`)
	r, ok := s.(*step.ReadCSV)
	require.True(t, ok)
	assert.Equal(t, "t", r.Table)
	assert.Equal(t, ';', r.Delimiter)
	require.Len(t, r.Schema, 1)
	assert.Equal(t, "age", r.Schema[0].Column)
	require.NotNil(t, r.NRows)
	assert.Equal(t, 10, *r.NRows)
}

func TestDecodeReadCSVDefaultsDelimiterToComma(t *testing.T) {
	s := decode(t, `{"type":"read_csv","table":"t","file":"in.csv"}`)
	r := s.(*step.ReadCSV)
	assert.Equal(t, ',', r.Delimiter)
}

func TestDecodeReadNDJSON(t *testing.T) {
	s := decode(t, `{"type":"read_ndjson","table":"t","file":"in.ndjson"}`)
	_, ok := s.(*step.ReadNDJSON)
	assert.True(t, ok)
}

func TestDecodeWriteCSV(t *testing.T) {
	s := decode(t, `{"type":"write_csv","table":"t","file":"out.csv","delimiter":"\t"}`)
	w := s.(*step.WriteCSV)
	assert.Equal(t, '\t', w.Delimiter)
}

func TestDecodeWriteNDJSON(t *testing.T) {
	s := decode(t, `{"type":"write_ndjson","table":"t","file":"out.ndjson"}`)
	_, ok := s.(*step.WriteNDJSON)
	assert.True(t, ok)
}

func TestDecodeWriteJSON(t *testing.T) {
	s := decode(t, `{"type":"write_json","table":"t","file":"out.json"}`)
	_, ok := s.(*step.WriteJSON)
	assert.True(t, ok)
}

func TestDecodeAddColumns(t *testing.T) {
	s := decode(t, `{"type":"add_columns","table":"t","columns":[
		{"name":"b","expression":{"type":"const","value":1}}
	]}`)
	a := s.(*step.AddColumns)
	require.Len(t, a.Columns, 1)
	assert.Equal(t, "b", a.Columns[0].Name)
	assert.NotNil(t, a.Columns[0].Expression)
}

func TestDecodeWithColumns(t *testing.T) {
	s := decode(t, `{"type":"with_columns","table":"t","columns":[
		{"name":"b","expression":{"type":"const","value":1}}
	]}`)
	_, ok := s.(*step.WithColumns)
	assert.True(t, ok)
}

func TestDecodeSelect(t *testing.T) {
	s := decode(t, `{"type":"select","table":"t","columns":["a","b"]}`)
	sel := s.(*step.Select)
	assert.Equal(t, []string{"a", "b"}, sel.Columns)
}

func TestDecodeWithoutColumns(t *testing.T) {
	s := decode(t, `{"type":"without_columns","table":"t","columns":["a"]}`)
	_, ok := s.(*step.WithoutColumns)
	assert.True(t, ok)
}

func TestDecodeFilter(t *testing.T) {
	s := decode(t, `{"type":"filter","inputTable":"in","outputTable":"out","condition":
		{"type":"eq","lhs":{"type":"col","name":"v"},"rhs":{"type":"const","value":1}}}`)
	f := s.(*step.Filter)
	assert.Equal(t, "in", f.InputTable)
	assert.Equal(t, "out", f.OutputTable)
	assert.NotNil(t, f.Condition)
}

func TestDecodeJoin(t *testing.T) {
	s := decode(t, `{"type":"join","leftTable":"l","rightTable":"r","outputTable":"o","how":"inner",
		"leftOn":["id"],"rightOn":["id"]}`)
	j := s.(*step.Join)
	assert.Equal(t, "inner", j.How)
	assert.Equal(t, []string{"id"}, j.LeftOn)
}

func TestDecodeAggregate(t *testing.T) {
	s := decode(t, `{"type":"aggregate","inputTable":"in","outputTable":"out","groupBy":["g"],
		"aggregations":[{"name":"s","column":"x","func":"sum"}]}`)
	a := s.(*step.Aggregate)
	require.Len(t, a.Aggregations, 1)
	assert.Equal(t, "sum", a.Aggregations[0].Func)
}

func TestDecodeConcatenate(t *testing.T) {
	s := decode(t, `{"type":"concatenate","tables":["a","b"],"outputTable":"out"}`)
	c := s.(*step.Concatenate)
	assert.Equal(t, []string{"a", "b"}, c.Tables)
}

func TestDecodeSort(t *testing.T) {
	s := decode(t, `{"type":"sort","table":"t","by":["a"],"descending":[true]}`)
	srt := s.(*step.Sort)
	assert.Equal(t, []bool{true}, srt.Descending)
}

func TestDecodeUnknownTagFails(t *testing.T) {
	_, err := step.Decode(json.RawMessage(`{"type":"frobnicate"}`))
	require.Error(t, err)
	assert.True(t, step.ErrUnknownTag.Is(err))
}

func TestDecodeMalformedFails(t *testing.T) {
	_, err := step.Decode(json.RawMessage(`not json`))
	require.Error(t, err)
	assert.True(t, step.ErrMalformed.Is(err))
}

func TestDecodeAllStopsAtFirstError(t *testing.T) {
	_, err := step.DecodeAll([]json.RawMessage{
		json.RawMessage(`{"type":"select","table":"t","columns":["a"]}`),
		json.RawMessage(`{"type":"bogus"}`),
	})
	require.Error(t, err)
	assert.True(t, step.ErrUnknownTag.Is(err))
}
