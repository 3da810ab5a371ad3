package expression

import (
	"fmt"
	"strings"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// Comparison implements the six comparison tags (gt, ge, eq, lt, le, neq).
// One Go type with an Op discriminator keeps the evaluator body in one
// place while decode.go's exhaustive switch still dispatches per tag, as
// §9 requires.
type Comparison struct {
	Op          string
	Left, Right sql.Expression
}

func newComparison(op string, l, r sql.Expression) *Comparison {
	return &Comparison{Op: op, Left: l, Right: r}
}

// NewGt, NewGe, NewEq, NewLt, NewLe, NewNeq construct the six comparison
// variants, mirroring the teacher's one-constructor-per-tag convention.
func NewGt(l, r sql.Expression) *Comparison  { return newComparison("gt", l, r) }
func NewGe(l, r sql.Expression) *Comparison  { return newComparison("ge", l, r) }
func NewEq(l, r sql.Expression) *Comparison  { return newComparison("eq", l, r) }
func NewLt(l, r sql.Expression) *Comparison  { return newComparison("lt", l, r) }
func NewLe(l, r sql.Expression) *Comparison  { return newComparison("le", l, r) }
func NewNeq(l, r sql.Expression) *Comparison { return newComparison("neq", l, r) }

func (c *Comparison) Type() value.Type         { return value.Bool }
func (c *Comparison) Children() []sql.Expression { return []sql.Expression{c.Left, c.Right} }
func (c *Comparison) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrWrongChildCount.New(c.Op, 2, len(children))
	}
	return newComparison(c.Op, children[0], children[1]), nil
}
func (c *Comparison) String() string {
	return fmt.Sprintf("%s(%s, %s)", c.Op, c.Left, c.Right)
}

func (c *Comparison) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	lv, err := c.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	rv, err := c.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if lv == nil || rv == nil {
		return nil, nil
	}

	cmp, err := compareValues(lv, rv)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New(c.Op, err.Error())
	}

	switch c.Op {
	case "gt":
		return cmp > 0, nil
	case "ge":
		return cmp >= 0, nil
	case "eq":
		return cmp == 0, nil
	case "lt":
		return cmp < 0, nil
	case "le":
		return cmp <= 0, nil
	case "neq":
		return cmp != 0, nil
	default:
		return nil, sql.ErrInvalidExpression.New("comparison", "unknown operator "+c.Op)
	}
}

// compareValues orders two scalars: lexicographically if either is a
// string, by boolean order (false < true) if a is a bool, otherwise
// numerically after coercing both to float64.
func compareValues(a, b interface{}) (int, error) {
	if as, ok := a.(string); ok {
		bs, _, err := value.AsString(b)
		if err != nil {
			return 0, err
		}
		return strings.Compare(as, bs), nil
	}
	if bs, ok := b.(string); ok {
		as, _, err := value.AsString(a)
		if err != nil {
			return 0, err
		}
		return strings.Compare(as, bs), nil
	}
	if ab, ok := a.(bool); ok {
		bb, _, err := value.AsBool(b)
		if err != nil {
			return 0, err
		}
		return boolCmp(ab, bb), nil
	}

	af, _, err := value.AsFloat64(a)
	if err != nil {
		return 0, err
	}
	bf, _, err := value.AsFloat64(b)
	if err != nil {
		return 0, err
	}
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}

func boolCmp(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}
