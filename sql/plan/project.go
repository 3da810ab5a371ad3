package plan

import (
	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/sql/expression"
	"github.com/milaboratory/ptabler/value"
)

// ColumnAssignment is one `{name, expression}` entry of `add_columns` or
// `with_columns` (§3): an unresolved expression aliased to Name.
type ColumnAssignment struct {
	Name string
	Expr sql.Expression
}

// ProjectMode selects which of the four column-shaping steps a Project
// node performs.
type ProjectMode int

const (
	// ModeSelect keeps only the named columns, in the given order.
	ModeSelect ProjectMode = iota
	// ModeWithoutColumns removes the named columns, keeping the rest in
	// their original order.
	ModeWithoutColumns
	// ModeAddColumns evaluates Assignments against the child's pre-step
	// schema and appends or overrides by name, atomically: later
	// assignments never see earlier ones in the same step (§4.2).
	ModeAddColumns
)

// Project implements `select`, `without_columns`, `with_columns` and
// `add_columns`. with_columns and add_columns share an implementation:
// both evaluate every assignment against the child's schema and
// add-or-override by name, matching the original Polars-backed
// implementation's batch semantics (§4 supplemented features).
type Project struct {
	Child       Node
	Mode        ProjectMode
	Columns     []string
	Assignments []ColumnAssignment
}

// NewSelect builds a `select` projection plan node.
func NewSelect(child Node, columns []string) *Project {
	return &Project{Child: child, Mode: ModeSelect, Columns: columns}
}

// NewWithoutColumns builds a `without_columns` plan node.
func NewWithoutColumns(child Node, columns []string) *Project {
	return &Project{Child: child, Mode: ModeWithoutColumns, Columns: columns}
}

// NewAddColumns builds an `add_columns`/`with_columns` plan node.
func NewAddColumns(child Node, assignments []ColumnAssignment) *Project {
	return &Project{Child: child, Mode: ModeAddColumns, Assignments: assignments}
}

func (p *Project) Schema(ctx *sql.Context) (sql.Schema, error) {
	childSchema, err := p.Child.Schema(ctx)
	if err != nil {
		return nil, err
	}
	switch p.Mode {
	case ModeSelect:
		return selectSchema(childSchema, p.Columns)
	case ModeWithoutColumns:
		return withoutSchema(childSchema, p.Columns)
	case ModeAddColumns:
		resolved, err := p.resolveAssignments(childSchema)
		if err != nil {
			return nil, err
		}
		return addColumnsSchema(childSchema, resolved), nil
	default:
		return nil, sql.ErrInvalidExpression.New("project", "unknown mode")
	}
}

func (p *Project) Collect(ctx *sql.Context) (*memory.Table, error) {
	child, err := p.Child.Collect(ctx)
	if err != nil {
		return nil, err
	}
	switch p.Mode {
	case ModeSelect:
		return child.Project(p.Columns, nil)
	case ModeWithoutColumns:
		keep, err := withoutSchema(child.Schema, p.Columns)
		if err != nil {
			return nil, err
		}
		return child.Project(keep.Names(), nil)
	case ModeAddColumns:
		return p.collectAddColumns(ctx, child)
	default:
		return nil, sql.ErrInvalidExpression.New("project", "unknown mode")
	}
}

func selectSchema(schema sql.Schema, columns []string) (sql.Schema, error) {
	out := make(sql.Schema, len(columns))
	for i, name := range columns {
		idx := schema.IndexOf(name)
		if idx < 0 {
			return nil, sql.ErrColumnNotFound.New(name, schema.Names())
		}
		out[i] = schema[idx]
	}
	return out, nil
}

func withoutSchema(schema sql.Schema, remove []string) (sql.Schema, error) {
	drop := map[string]bool{}
	for _, n := range remove {
		if schema.IndexOf(n) < 0 {
			return nil, sql.ErrColumnNotFound.New(n, schema.Names())
		}
		drop[n] = true
	}
	var out sql.Schema
	for _, c := range schema {
		if !drop[c.Name] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p *Project) resolveAssignments(childSchema sql.Schema) ([]ColumnAssignment, error) {
	out := make([]ColumnAssignment, len(p.Assignments))
	for i, a := range p.Assignments {
		resolved, err := expression.Resolve(a.Expr, childSchema)
		if err != nil {
			return nil, err
		}
		out[i] = ColumnAssignment{Name: a.Name, Expr: resolved}
	}
	return out, nil
}

func addColumnsSchema(childSchema sql.Schema, assignments []ColumnAssignment) sql.Schema {
	schema := make(sql.Schema, len(childSchema))
	copy(schema, childSchema)
	for _, a := range assignments {
		col := sql.Column{Name: a.Name, Type: a.Expr.Type()}
		if idx := schema.IndexOf(a.Name); idx >= 0 {
			schema[idx] = col
		} else {
			schema = append(schema, col)
		}
	}
	return schema
}

func (p *Project) collectAddColumns(ctx *sql.Context, child *memory.Table) (*memory.Table, error) {
	assignments, err := p.resolveAssignments(child.Schema)
	if err != nil {
		return nil, err
	}

	schema := addColumnsSchema(child.Schema, assignments)
	rows := make([]sql.Row, len(child.Rows))
	for i, row := range child.Rows {
		newRow := make(sql.Row, len(schema))
		copy(newRow, row)
		rows[i] = newRow
	}

	for _, a := range assignments {
		values, err := evalAssignment(ctx, a.Expr, child.Rows, child.Schema)
		if err != nil {
			return nil, err
		}
		idx := schema.IndexOf(a.Name)
		for i, v := range values {
			rows[i][idx] = v
		}
	}

	return memory.NewTable(schema, rows), nil
}

// evalAssignment computes one new column's values, dispatching to
// EvalWindow for rank/cumsum (which require the full row-set) and to
// row-at-a-time Eval for everything else.
func evalAssignment(ctx *sql.Context, expr sql.Expression, rows []sql.Row, schema sql.Schema) ([]interface{}, error) {
	if w, ok := expr.(sql.WindowExpression); ok {
		return w.EvalWindow(ctx, rows, schema)
	}
	values := make([]interface{}, len(rows))
	for i, row := range rows {
		v, err := expr.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		coerced, err := value.Coerce(v, expr.Type())
		if err != nil {
			// Not every expression result round-trips through Coerce
			// cleanly (e.g. bool-typed predicates); fall back to the raw
			// value rather than failing the whole column.
			coerced = v
		}
		values[i] = coerced
	}
	return values, nil
}
