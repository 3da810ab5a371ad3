package step

import (
	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/sql/plan"
	"github.com/milaboratory/ptabler/tablespace"
)

// ColumnSpec is one `{name, expression}` entry of `add_columns` (§3).
type ColumnSpec struct {
	Name       string
	Expression sql.Expression
}

// AddColumns implements `add_columns` (§3, §4.2): replaces Table's entry
// with one extended by the new columns, all computed against the
// pre-step schema and appended atomically.
type AddColumns struct {
	Table   string
	Columns []ColumnSpec
}

func (a *AddColumns) Tag() string { return "add_columns" }

func (a *AddColumns) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	node, err := space.Get(a.Table)
	if err != nil {
		return nil, nil, err
	}
	assignments := make([]plan.ColumnAssignment, len(a.Columns))
	for i, c := range a.Columns {
		assignments[i] = plan.ColumnAssignment{Name: c.Name, Expr: c.Expression}
	}
	return space.With(a.Table, plan.NewAddColumns(node, assignments)), nil, nil
}

// WithColumns implements `with_columns`, sharing AddColumns's plan node
// (§4 supplemented features: both add-or-override by name against the
// pre-step schema).
type WithColumns struct {
	Table   string
	Columns []ColumnSpec
}

func (w *WithColumns) Tag() string { return "with_columns" }

func (w *WithColumns) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	node, err := space.Get(w.Table)
	if err != nil {
		return nil, nil, err
	}
	assignments := make([]plan.ColumnAssignment, len(w.Columns))
	for i, c := range w.Columns {
		assignments[i] = plan.ColumnAssignment{Name: c.Name, Expr: c.Expression}
	}
	return space.With(w.Table, plan.NewAddColumns(node, assignments)), nil, nil
}

// Select implements `select`: keep only Columns, in order (§3, §4.2).
type Select struct {
	Table   string
	Columns []string
}

func (s *Select) Tag() string { return "select" }

func (s *Select) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	node, err := space.Get(s.Table)
	if err != nil {
		return nil, nil, err
	}
	return space.With(s.Table, plan.NewSelect(node, s.Columns)), nil, nil
}

// WithoutColumns implements `without_columns`: drop Columns, keep the
// rest in their original order (§3, §4.2).
type WithoutColumns struct {
	Table   string
	Columns []string
}

func (w *WithoutColumns) Tag() string { return "without_columns" }

func (w *WithoutColumns) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	node, err := space.Get(w.Table)
	if err != nil {
		return nil, nil, err
	}
	return space.With(w.Table, plan.NewWithoutColumns(node, w.Columns)), nil, nil
}
