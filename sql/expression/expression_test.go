package expression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/sql/expression"
	"github.com/milaboratory/ptabler/value"
)

func ctx() *sql.Context { return sql.NewEmptyContext() }

func col(idx int, t value.Type, name string) sql.Expression {
	return expression.NewGetField(idx, t, name)
}

func TestComparisonNumeric(t *testing.T) {
	row := sql.NewRow(int64(3), int64(5))
	gt := expression.NewGt(col(0, value.Long, "a"), col(1, value.Long, "b"))
	v, err := gt.Eval(ctx(), row)
	require.NoError(t, err)
	assert.Equal(t, false, v)

	lt := expression.NewLt(col(0, value.Long, "a"), col(1, value.Long, "b"))
	v, err = lt.Eval(ctx(), row)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestComparisonNullPropagates(t *testing.T) {
	row := sql.NewRow(nil, int64(5))
	eq := expression.NewEq(col(0, value.Long, "a"), col(1, value.Long, "b"))
	v, err := eq.Eval(ctx(), row)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestArithmeticPlusWidensType(t *testing.T) {
	plus := expression.NewPlus(col(0, value.Long, "a"), expression.NewLiteral(float64(1.5), value.Double))
	assert.Equal(t, value.Double, plus.Type())
	v, err := plus.Eval(ctx(), sql.NewRow(int64(2)))
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestArithmeticFloorDivByZero(t *testing.T) {
	fd := expression.NewFloorDiv(col(0, value.Long, "a"), expression.NewLiteral(int64(0), value.Long))
	_, err := fd.Eval(ctx(), sql.NewRow(int64(4)))
	assert.Error(t, err)
}

func TestUnaryArithmeticLog2UsesLnRatio(t *testing.T) {
	log2 := expression.NewLog2(expression.NewLiteral(float64(8), value.Double))
	v, err := log2.Eval(ctx(), sql.NewRow())
	require.NoError(t, err)
	assert.InDelta(t, 3.0, v.(float64), 1e-9)
}

func TestLogicAndOrNot(t *testing.T) {
	and := expression.NewAnd(expression.NewLiteral(true, value.Bool), expression.NewLiteral(false, value.Bool))
	v, err := and.Eval(ctx(), sql.NewRow())
	require.NoError(t, err)
	assert.Equal(t, false, v)

	or := expression.NewOr(expression.NewLiteral(true, value.Bool), expression.NewLiteral(false, value.Bool))
	v, err = or.Eval(ctx(), sql.NewRow())
	require.NoError(t, err)
	assert.Equal(t, true, v)

	not := expression.NewNot(expression.NewLiteral(true, value.Bool))
	v, err = not.Eval(ctx(), sql.NewRow())
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestIsNaIsNotNa(t *testing.T) {
	isNa := expression.NewIsNa(col(0, value.String, "a"))
	v, err := isNa.Eval(ctx(), sql.NewRow(nil))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	isNotNa := expression.NewIsNotNa(col(0, value.String, "a"))
	v, err = isNotNa.Eval(ctx(), sql.NewRow("x"))
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestReducerMinMax(t *testing.T) {
	min := expression.NewMin(
		expression.NewLiteral(int64(3), value.Long),
		expression.NewLiteral(int64(1), value.Long),
		expression.NewLiteral(int64(2), value.Long),
	)
	v, err := min.Eval(ctx(), sql.NewRow())
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	max := expression.NewMax(
		expression.NewLiteral(int64(3), value.Long),
		expression.NewLiteral(int64(1), value.Long),
	)
	v, err = max.Eval(ctx(), sql.NewRow())
	require.NoError(t, err)
	assert.EqualValues(t, 3, v)
}

func TestReducerEmptyIsIdentity(t *testing.T) {
	min := expression.NewMin()
	v, err := min.Eval(ctx(), sql.NewRow())
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestStringKernels(t *testing.T) {
	upper := expression.NewToUpper(expression.NewLiteral("abc", value.String))
	v, err := upper.Eval(ctx(), sql.NewRow())
	require.NoError(t, err)
	assert.Equal(t, "ABC", v)

	join := expression.NewStrJoin("-", expression.NewLiteral("a", value.String), expression.NewLiteral("b", value.String))
	v, err = join.Eval(ctx(), sql.NewRow())
	require.NoError(t, err)
	assert.Equal(t, "a-b", v)

	sub, err := expression.NewSubstring(expression.NewLiteral("hello", value.String), 1, intp(3), nil)
	require.NoError(t, err)
	v, err = sub.Eval(ctx(), sql.NewRow())
	require.NoError(t, err)
	assert.Equal(t, "ell", v)
}

func intp(i int) *int { return &i }

func TestWalkVisitsChildren(t *testing.T) {
	expr := expression.NewAnd(
		expression.NewGt(col(0, value.Long, "a"), expression.NewLiteral(int64(1), value.Long)),
		expression.NewLiteral(true, value.Bool),
	)
	seen := 0
	childVisits := 0
	sql.Walk(func(e sql.Expression) sql.Visitor {
		seen++
		return func(e sql.Expression) sql.Visitor {
			childVisits++
			return nil
		}
	}, expr)
	assert.Equal(t, 1, seen)
	assert.Equal(t, 2, childVisits)
}
