package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/sql/expression"
	"github.com/milaboratory/ptabler/sql/plan"
	"github.com/milaboratory/ptabler/value"
)

// literalNode is a leaf plan.Node wrapping an already-built table, used to
// exercise the non-leaf nodes without going through an actual file scan.
type literalNode struct {
	table *memory.Table
}

func (l *literalNode) Schema(ctx *sql.Context) (sql.Schema, error) { return l.table.Schema, nil }
func (l *literalNode) Collect(ctx *sql.Context) (*memory.Table, error) {
	return l.table, nil
}

func leaf(schema sql.Schema, rows []sql.Row) plan.Node {
	return &literalNode{table: memory.NewTable(schema, rows)}
}

func schemaOf(names ...string) sql.Schema {
	s := make(sql.Schema, len(names))
	for i, n := range names {
		s[i] = sql.Column{Name: n, Type: value.String}
	}
	return s
}

func TestProjectSelect(t *testing.T) {
	n := plan.NewSelect(leaf(schemaOf("a", "b"), []sql.Row{sql.NewRow("1", "2")}), []string{"b"})
	tbl, err := n.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, tbl.Schema.Names())
	assert.Equal(t, sql.NewRow("2"), tbl.Rows[0])
}

func TestProjectWithoutColumns(t *testing.T) {
	n := plan.NewWithoutColumns(leaf(schemaOf("a", "b"), []sql.Row{sql.NewRow("1", "2")}), []string{"a"})
	schema, err := n.Schema(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, schema.Names())
}

func TestProjectAddColumnsUsesPreStepSchemaForAllAssignments(t *testing.T) {
	child := leaf(schemaOf("a"), []sql.Row{sql.NewRow("x")})
	assignments := []plan.ColumnAssignment{
		{Name: "a", Expr: expression.NewLiteral("overridden", value.String)},
		{Name: "b", Expr: expression.NewColumnRef("a")},
	}
	n := plan.NewAddColumns(child, assignments)
	tbl, err := n.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Schema.Names())
	// "b" resolves "a" against the pre-step schema, so it sees the
	// original value "x", not the "overridden" value also being assigned.
	assert.Equal(t, "overridden", tbl.Rows[0][0])
	assert.Equal(t, "x", tbl.Rows[0][1])
}

func TestFilterKeepsOnlyMatchingRows(t *testing.T) {
	child := leaf(schemaOf("v"), []sql.Row{sql.NewRow("keep"), sql.NewRow("drop")})
	cond := expression.NewEq(expression.NewColumnRef("v"), expression.NewLiteral("keep", value.String))
	n := plan.NewFilter(child, cond)
	tbl, err := n.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "keep", tbl.Rows[0][0])
}

func TestJoinAppliesPreJoinColumnRenameProjection(t *testing.T) {
	left := leaf(schemaOf("id", "name"), []sql.Row{sql.NewRow("1", "alice")})
	right := leaf(schemaOf("id", "city"), []sql.Row{sql.NewRow("1", "nyc")})
	n := plan.NewJoin(left, right, "inner", []string{"id"}, []string{"id"},
		map[string]string{"id": "lid", "name": "name"}, nil)
	tbl, err := n.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"lid", "name", "id", "city"}, tbl.Schema.Names())
}

func TestAggregateNode(t *testing.T) {
	child := leaf(
		append(sql.Schema{{Name: "g", Type: value.String}}, sql.Column{Name: "x", Type: value.Double}),
		[]sql.Row{sql.NewRow("a", 1.0), sql.NewRow("a", 2.0)},
	)
	n := plan.NewAggregate(child, []string{"g"}, []memory.AggSpec{{Name: "s", Column: "x", Func: "sum"}})
	tbl, err := n.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Equal(t, 3.0, tbl.Rows[0][1])
}

func TestSortNode(t *testing.T) {
	child := leaf(schemaOf("v"), []sql.Row{sql.NewRow("b"), sql.NewRow("a")})
	n := plan.NewSort(child, []string{"v"}, []bool{false})
	tbl, err := n.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Equal(t, "a", tbl.Rows[0][0])
}

func TestConcatNode(t *testing.T) {
	a := leaf(schemaOf("x"), []sql.Row{sql.NewRow("1")})
	b := leaf(schemaOf("x"), []sql.Row{sql.NewRow("2")})
	n := plan.NewConcat([]plan.Node{a, b})
	tbl, err := n.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)
}

func TestCacheMemoizesCollect(t *testing.T) {
	calls := 0
	counting := &countingNode{base: leaf(schemaOf("x"), []sql.Row{sql.NewRow("1")}), calls: &calls}
	cached := plan.Cache(counting)
	_, err := cached.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	_, err = cached.Collect(sql.NewEmptyContext())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

type countingNode struct {
	base  plan.Node
	calls *int
}

func (c *countingNode) Schema(ctx *sql.Context) (sql.Schema, error) { return c.base.Schema(ctx) }
func (c *countingNode) Collect(ctx *sql.Context) (*memory.Table, error) {
	*c.calls++
	return c.base.Collect(ctx)
}
