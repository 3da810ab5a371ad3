package expression

import (
	"fmt"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// StructField implements `struct_field`: extract a named field from a
// struct-valued column. Structs only arise as intermediate, engine-internal
// column types (§3) — in the reference memory adapter they surface as
// map[string]interface{}, produced by scanning nested NDJSON objects.
type StructField struct {
	Struct sql.Expression
	Field  string
}

func NewStructField(structExpr sql.Expression, field string) *StructField {
	return &StructField{Struct: structExpr, Field: field}
}

func (s *StructField) Type() value.Type           { return value.String }
func (s *StructField) Children() []sql.Expression { return []sql.Expression{s.Struct} }
func (s *StructField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrWrongChildCount.New("struct_field", 1, len(children))
	}
	return &StructField{Struct: children[0], Field: s.Field}, nil
}
func (s *StructField) String() string { return fmt.Sprintf("struct_field(%s, %q)", s.Struct, s.Field) }

func (s *StructField) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := s.Struct.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, sql.ErrTypeMismatch.New("struct_field", fmt.Sprintf("value is not a struct: %v", v))
	}
	return m[s.Field], nil
}
