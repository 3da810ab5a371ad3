package expression

import (
	"fmt"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// Reducer implements the `min`/`max` horizontal reducers: a row-wise
// comparison across N sibling column expressions. An empty operand list
// evaluates to a typed null (§3, §8).
type Reducer struct {
	Op       string // "min" or "max"
	Operands []sql.Expression
}

func NewMin(operands ...sql.Expression) *Reducer { return &Reducer{Op: "min", Operands: operands} }
func NewMax(operands ...sql.Expression) *Reducer { return &Reducer{Op: "max", Operands: operands} }

func (r *Reducer) Type() value.Type {
	if len(r.Operands) == 0 {
		return value.Double
	}
	return widestNumericType(r.Operands...)
}
func (r *Reducer) Children() []sql.Expression { return r.Operands }
func (r *Reducer) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &Reducer{Op: r.Op, Operands: children}, nil
}
func (r *Reducer) String() string { return fmt.Sprintf("%s(%s)", r.Op, joinStrings(r.Operands)) }

func (r *Reducer) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	if len(r.Operands) == 0 {
		return nil, nil
	}
	var best float64
	haveBest := false
	for _, op := range r.Operands {
		v, err := op.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			// Null propagation: any null sibling makes the row-wise
			// reduction null, matching arithmetic's null policy.
			return nil, nil
		}
		f, _, err := value.AsFloat64(v)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New(r.Op, err.Error())
		}
		if !haveBest {
			best, haveBest = f, true
			continue
		}
		if r.Op == "min" && f < best {
			best = f
		}
		if r.Op == "max" && f > best {
			best = f
		}
	}
	return coerceResult(best, r.Type()), nil
}
