package expression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/sql/expression"
	"github.com/milaboratory/ptabler/value"
)

func schemaAB() sql.Schema {
	return sql.Schema{
		{Name: "a", Type: value.Long},
		{Name: "b", Type: value.String},
	}
}

func TestResolveBindsColumnRefToGetField(t *testing.T) {
	resolved, err := expression.Resolve(expression.NewColumnRef("b"), schemaAB())
	require.NoError(t, err)
	gf, ok := resolved.(*expression.GetField)
	require.True(t, ok)
	assert.Equal(t, 1, gf.Index)
	assert.Equal(t, value.String, gf.Typ)
}

func TestResolveRecursesIntoChildren(t *testing.T) {
	expr := expression.NewEq(expression.NewColumnRef("a"), expression.NewLiteral(int64(1), value.Long))
	resolved, err := expression.Resolve(expr, schemaAB())
	require.NoError(t, err)

	row := sql.NewRow(int64(1), "x")
	v, err := resolved.Eval(sql.NewEmptyContext(), row)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestResolveUnknownColumnFails(t *testing.T) {
	_, err := expression.Resolve(expression.NewColumnRef("missing"), schemaAB())
	require.Error(t, err)
	assert.True(t, sql.ErrColumnNotFound.Is(err))
}

func TestResolveNilExpressionIsNoop(t *testing.T) {
	resolved, err := expression.Resolve(nil, schemaAB())
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestResolveLeavesAlreadyResolvedExpressionUnchanged(t *testing.T) {
	gf := expression.NewGetField(0, value.Long, "a")
	resolved, err := expression.Resolve(gf, schemaAB())
	require.NoError(t, err)
	assert.Same(t, gf, resolved)
}
