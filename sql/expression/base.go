// Package expression implements the tagged expression algebra of §3/§4.1:
// one Go type (or tag-parameterized family) per wire tag, each satisfying
// sql.Expression. Decoding JSON into these types lives in the sibling
// package sql/expression/decode; this package is the evaluable, already
// name-resolved form produced by Resolve.
package expression

import (
	"fmt"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// Literal is a constant scalar value, broadcast across every row. It
// implements the `const` tag.
type Literal struct {
	Value interface{}
	Typ   value.Type
}

// NewLiteral constructs a constant expression.
func NewLiteral(v interface{}, t value.Type) *Literal {
	return &Literal{Value: v, Typ: t}
}

func (l *Literal) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) { return l.Value, nil }
func (l *Literal) Type() value.Type                                       { return l.Typ }
func (l *Literal) Children() []sql.Expression                             { return nil }
func (l *Literal) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrWrongChildCount.New("const", 0, len(children))
	}
	return l, nil
}
func (l *Literal) String() string {
	if l.Value == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", l.Value)
}

// NewNullLiteral builds a null literal carrying type t. Reducer does not
// use it: an empty min/max returns nil directly from Eval.
func NewNullLiteral(t value.Type) *Literal {
	return &Literal{Value: nil, Typ: t}
}

// ColumnRef is the `col` tag: a reference to a column by name. Decoding
// produces a ColumnRef holding only Name; Resolve binds it to a row
// position against a concrete schema, producing a *GetField in its place
// (see resolve.go).
type ColumnRef struct {
	Name string
}

// NewColumnRef constructs an unresolved column reference.
func NewColumnRef(name string) *ColumnRef {
	return &ColumnRef{Name: name}
}

func (c *ColumnRef) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrInvalidExpression.New("col", fmt.Sprintf("column %q was never resolved against a schema", c.Name))
}
func (c *ColumnRef) Type() value.Type         { return value.String }
func (c *ColumnRef) Children() []sql.Expression { return nil }
func (c *ColumnRef) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrWrongChildCount.New("col", 0, len(children))
	}
	return c, nil
}
func (c *ColumnRef) String() string { return c.Name }

// ResolveColumn binds the reference against schema, per the Resolvable
// contract used by Resolve.
func (c *ColumnRef) ResolveColumn(schema sql.Schema) (sql.Expression, error) {
	idx := schema.IndexOf(c.Name)
	if idx < 0 {
		return nil, sql.ErrColumnNotFound.New(c.Name, schema.Names())
	}
	return NewGetField(idx, schema[idx].Type, c.Name), nil
}

// GetField is the resolved form of a column reference: a direct row
// position, mirroring the teacher's expression.GetField.
type GetField struct {
	Index int
	Typ   value.Type
	Name  string
}

// NewGetField constructs an already-resolved column access.
func NewGetField(index int, typ value.Type, name string) *GetField {
	return &GetField{Index: index, Typ: typ, Name: name}
}

func (g *GetField) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	if g.Index < 0 || g.Index >= len(row) {
		return nil, sql.ErrColumnNotFound.New(g.Name, []string{})
	}
	return row[g.Index], nil
}
func (g *GetField) Type() value.Type         { return g.Typ }
func (g *GetField) Children() []sql.Expression { return nil }
func (g *GetField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrWrongChildCount.New("col", 0, len(children))
	}
	return g, nil
}
func (g *GetField) String() string { return g.Name }
