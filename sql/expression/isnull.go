package expression

import (
	"fmt"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// IsNull implements `is_na` and `is_not_na`, sharing one body with a
// Negate flag the way Comparison/Arithmetic share an Op discriminator.
type IsNull struct {
	Child  sql.Expression
	Negate bool
}

func NewIsNa(child sql.Expression) *IsNull    { return &IsNull{Child: child} }
func NewIsNotNa(child sql.Expression) *IsNull { return &IsNull{Child: child, Negate: true} }

func (n *IsNull) Type() value.Type           { return value.Bool }
func (n *IsNull) Children() []sql.Expression { return []sql.Expression{n.Child} }
func (n *IsNull) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrWrongChildCount.New(n.tag(), 1, len(children))
	}
	return &IsNull{Child: children[0], Negate: n.Negate}, nil
}
func (n *IsNull) tag() string {
	if n.Negate {
		return "is_not_na"
	}
	return "is_na"
}
func (n *IsNull) String() string { return fmt.Sprintf("%s(%s)", n.tag(), n.Child) }

func (n *IsNull) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := n.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	isNull := v == nil
	if n.Negate {
		return !isNull, nil
	}
	return isNull, nil
}
