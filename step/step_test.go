package step_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/sql/expression"
	"github.com/milaboratory/ptabler/step"
	"github.com/milaboratory/ptabler/tablespace"
	"github.com/milaboratory/ptabler/value"
)

func TestReadCSVBindsTableInSpace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in.csv"), []byte("a,b\n1,2\n"), 0o644))

	settings := step.Settings{RootFolder: dir}
	s := &step.ReadCSV{Table: "t", File: "in.csv"}
	space, sinks, err := s.Execute(tablespace.Empty(), settings)
	require.NoError(t, err)
	assert.Empty(t, sinks)

	node, err := space.Get("t")
	require.NoError(t, err)
	tbl, err := node.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Schema.Names())
}

func TestReadCSVRejectsEscapingPath(t *testing.T) {
	settings := step.Settings{RootFolder: t.TempDir()}
	s := &step.ReadCSV{Table: "t", File: "../outside.csv"}
	_, _, err := s.Execute(tablespace.Empty(), settings)
	assert.Error(t, err)
}

func TestWriteCSVAppendsSinkWithoutMutatingSpace(t *testing.T) {
	dir := t.TempDir()
	settings := step.Settings{RootFolder: dir}
	node := &literalNode{table: memory.NewTable(schemaOf("a"), []sql.Row{sql.NewRow("1")})}
	space := tablespace.Empty().With("t", node)

	w := &step.WriteCSV{Table: "t", File: "out.csv"}
	nextSpace, sinks, err := w.Execute(space, settings)
	require.NoError(t, err)
	require.Len(t, sinks, 1)
	assert.Equal(t, space, nextSpace)

	require.NoError(t, sinks[0].Materialize(sql.NewEmptyContext()))
	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(data))
}

func TestAddColumnsStep(t *testing.T) {
	node := &literalNode{table: memory.NewTable(schemaOf("a"), []sql.Row{sql.NewRow("x")})}
	space := tablespace.Empty().With("t", node)

	a := &step.AddColumns{Table: "t", Columns: []step.ColumnSpec{
		{Name: "b", Expression: expression.NewLiteral("y", value.String)},
	}}
	nextSpace, _, err := a.Execute(space, step.Settings{})
	require.NoError(t, err)

	n, err := nextSpace.Get("t")
	require.NoError(t, err)
	tbl, err := n.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Schema.Names())
}

func TestSelectStep(t *testing.T) {
	node := &literalNode{table: memory.NewTable(schemaOf("a", "b"), []sql.Row{sql.NewRow("1", "2")})}
	space := tablespace.Empty().With("t", node)

	s := &step.Select{Table: "t", Columns: []string{"b"}}
	nextSpace, _, err := s.Execute(space, step.Settings{})
	require.NoError(t, err)
	n, err := nextSpace.Get("t")
	require.NoError(t, err)
	schema, err := n.Schema(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, schema.Names())
}

func TestFilterStepWiresConditionToPlan(t *testing.T) {
	node := &literalNode{table: memory.NewTable(schemaOf("v"), []sql.Row{sql.NewRow("keep"), sql.NewRow("drop")})}
	space := tablespace.Empty().With("in", node)

	f := &step.Filter{
		InputTable:  "in",
		OutputTable: "out",
		Condition:   expression.NewEq(expression.NewColumnRef("v"), expression.NewLiteral("keep", value.String)),
	}
	nextSpace, _, err := f.Execute(space, step.Settings{})
	require.NoError(t, err)
	n, err := nextSpace.Get("out")
	require.NoError(t, err)
	tbl, err := n.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestJoinStepRequiresKeysForNonCross(t *testing.T) {
	left := &literalNode{table: memory.NewTable(schemaOf("id"), nil)}
	right := &literalNode{table: memory.NewTable(schemaOf("id"), nil)}
	space := tablespace.Empty().With("l", left).With("r", right)

	j := &step.Join{LeftTable: "l", RightTable: "r", OutputTable: "o", How: "inner"}
	_, _, err := j.Execute(space, step.Settings{})
	require.Error(t, err)
	assert.True(t, step.ErrJoinParameters.Is(err))
}

func TestAggregateStep(t *testing.T) {
	node := &literalNode{table: memory.NewTable(
		append(sql.Schema{{Name: "g", Type: value.String}}, sql.Column{Name: "x", Type: value.Double}),
		[]sql.Row{sql.NewRow("a", 1.0), sql.NewRow("a", 2.0)},
	)}
	space := tablespace.Empty().With("in", node)
	a := &step.Aggregate{
		InputTable: "in", OutputTable: "out", GroupBy: []string{"g"},
		Aggregations: []memory.AggSpec{{Name: "s", Column: "x", Func: "sum"}},
	}
	nextSpace, _, err := a.Execute(space, step.Settings{})
	require.NoError(t, err)
	n, err := nextSpace.Get("out")
	require.NoError(t, err)
	tbl, err := n.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Equal(t, 3.0, tbl.Rows[0][1])
}

func TestConcatenateStep(t *testing.T) {
	a := &literalNode{table: memory.NewTable(schemaOf("x"), []sql.Row{sql.NewRow("1")})}
	b := &literalNode{table: memory.NewTable(schemaOf("x"), []sql.Row{sql.NewRow("2")})}
	space := tablespace.Empty().With("a", a).With("b", b)

	c := &step.Concatenate{Tables: []string{"a", "b"}, OutputTable: "out"}
	nextSpace, _, err := c.Execute(space, step.Settings{})
	require.NoError(t, err)
	n, err := nextSpace.Get("out")
	require.NoError(t, err)
	tbl, err := n.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)
}

func TestSortStepBroadcastsSingleDescendingFlag(t *testing.T) {
	node := &literalNode{table: memory.NewTable(schemaOf("v"), []sql.Row{sql.NewRow("a"), sql.NewRow("b")})}
	space := tablespace.Empty().With("t", node)

	s := &step.Sort{Table: "t", By: []string{"v"}, Descending: []bool{true}}
	nextSpace, _, err := s.Execute(space, step.Settings{})
	require.NoError(t, err)
	n, err := nextSpace.Get("t")
	require.NoError(t, err)
	tbl, err := n.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Equal(t, "b", tbl.Rows[0][0])
}

func TestSortStepRejectsMismatchedDescendingLength(t *testing.T) {
	node := &literalNode{table: memory.NewTable(schemaOf("a", "b"), nil)}
	space := tablespace.Empty().With("t", node)

	s := &step.Sort{Table: "t", By: []string{"a", "b"}, Descending: []bool{true, false, true}}
	_, _, err := s.Execute(space, step.Settings{})
	require.Error(t, err)
	assert.True(t, step.ErrSortParameters.Is(err))
}

type literalNode struct{ table *memory.Table }

func (l *literalNode) Schema(ctx *sql.Context) (sql.Schema, error) { return l.table.Schema, nil }
func (l *literalNode) Collect(ctx *sql.Context) (*memory.Table, error) { return l.table, nil }

func schemaOf(names ...string) sql.Schema {
	s := make(sql.Schema, len(names))
	for i, n := range names {
		s[i] = sql.Column{Name: n, Type: value.String}
	}
	return s
}
