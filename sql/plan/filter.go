package plan

import (
	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/sql/expression"
	"github.com/milaboratory/ptabler/value"
)

// Filter implements the `filter` step: a row predicate lowered from
// Condition, evaluated against the child's schema.
type Filter struct {
	Child     Node
	Condition sql.Expression
}

// NewFilter builds a filter plan node over an unresolved condition.
func NewFilter(child Node, condition sql.Expression) *Filter {
	return &Filter{Child: child, Condition: condition}
}

func (f *Filter) Schema(ctx *sql.Context) (sql.Schema, error) {
	return f.Child.Schema(ctx)
}

func (f *Filter) Collect(ctx *sql.Context) (*memory.Table, error) {
	child, err := f.Child.Collect(ctx)
	if err != nil {
		return nil, err
	}
	cond, err := expression.Resolve(f.Condition, child.Schema)
	if err != nil {
		return nil, err
	}

	var rows []sql.Row
	for _, row := range child.Rows {
		v, err := cond.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		ok, _, err := value.AsBool(v)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New("filter", err.Error())
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return memory.NewTable(child.Schema, rows), nil
}
