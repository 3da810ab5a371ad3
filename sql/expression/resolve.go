package expression

import "github.com/milaboratory/ptabler/sql"

// Resolvable is implemented by expression leaves whose meaning depends on a
// schema not known at decode time. Only ColumnRef implements it today.
type Resolvable interface {
	sql.Expression
	ResolveColumn(schema sql.Schema) (sql.Expression, error)
}

// Resolve walks a decoded expression tree and replaces every ColumnRef leaf
// with a GetField bound to schema. It runs after decoding, once per step,
// against the schema of the table the step reads.
func Resolve(e sql.Expression, schema sql.Schema) (sql.Expression, error) {
	if e == nil {
		return nil, nil
	}
	if r, ok := e.(Resolvable); ok {
		return r.ResolveColumn(schema)
	}
	children := e.Children()
	if len(children) == 0 {
		return e, nil
	}
	resolved := make([]sql.Expression, len(children))
	for i, c := range children {
		rc, err := Resolve(c, schema)
		if err != nil {
			return nil, err
		}
		resolved[i] = rc
	}
	return e.WithChildren(resolved...)
}
