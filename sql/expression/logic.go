package expression

import (
	"fmt"
	"strings"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// And implements the `and` tag. An empty operand list evaluates to the
// literal true, broadcast across rows (§4.1, §8 boolean identities).
type And struct {
	Operands []sql.Expression
}

func NewAnd(operands ...sql.Expression) *And { return &And{Operands: operands} }

func (a *And) Type() value.Type           { return value.Bool }
func (a *And) Children() []sql.Expression { return a.Operands }
func (a *And) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &And{Operands: children}, nil
}
func (a *And) String() string { return "and(" + joinStrings(a.Operands) + ")" }

func (a *And) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	if len(a.Operands) == 0 {
		return true, nil
	}
	sawNull := false
	for _, op := range a.Operands {
		v, err := op.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			sawNull = true
			continue
		}
		b, _, err := value.AsBool(v)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New("and", err.Error())
		}
		if !b {
			return false, nil
		}
	}
	if sawNull {
		return nil, nil
	}
	return true, nil
}

// Or implements the `or` tag. An empty operand list evaluates to the
// literal false, broadcast across rows.
type Or struct {
	Operands []sql.Expression
}

func NewOr(operands ...sql.Expression) *Or { return &Or{Operands: operands} }

func (o *Or) Type() value.Type           { return value.Bool }
func (o *Or) Children() []sql.Expression { return o.Operands }
func (o *Or) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &Or{Operands: children}, nil
}
func (o *Or) String() string { return "or(" + joinStrings(o.Operands) + ")" }

func (o *Or) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	if len(o.Operands) == 0 {
		return false, nil
	}
	sawNull := false
	for _, op := range o.Operands {
		v, err := op.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			sawNull = true
			continue
		}
		b, _, err := value.AsBool(v)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New("or", err.Error())
		}
		if b {
			return true, nil
		}
	}
	if sawNull {
		return nil, nil
	}
	return false, nil
}

// Not implements the `not` tag.
type Not struct {
	Child sql.Expression
}

func NewNot(child sql.Expression) *Not { return &Not{Child: child} }

func (n *Not) Type() value.Type           { return value.Bool }
func (n *Not) Children() []sql.Expression { return []sql.Expression{n.Child} }
func (n *Not) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrWrongChildCount.New("not", 1, len(children))
	}
	return &Not{Child: children[0]}, nil
}
func (n *Not) String() string { return fmt.Sprintf("not(%s)", n.Child) }

func (n *Not) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := n.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	b, _, err := value.AsBool(v)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New("not", err.Error())
	}
	return !b, nil
}

func joinStrings(exprs []sql.Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
