package plan

import (
	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql"
)

// Join implements the `join` step (§3, §4.2): left_columns/right_columns
// are applied as a pre-join renaming projection, then the engine/memory
// join primitive is collected for the requested how.
type Join struct {
	Left, Right             Node
	How                     string
	LeftOn, RightOn         []string
	LeftColumns             map[string]string
	RightColumns            map[string]string
}

// NewJoin builds a join plan node.
func NewJoin(left, right Node, how string, leftOn, rightOn []string, leftColumns, rightColumns map[string]string) *Join {
	return &Join{
		Left: left, Right: right, How: how,
		LeftOn: leftOn, RightOn: rightOn,
		LeftColumns: leftColumns, RightColumns: rightColumns,
	}
}

func (j *Join) Schema(ctx *sql.Context) (sql.Schema, error) {
	leftSchema, err := j.Left.Schema(ctx)
	if err != nil {
		return nil, err
	}
	rightSchema, err := j.Right.Schema(ctx)
	if err != nil {
		return nil, err
	}
	leftSchema = renameSchema(leftSchema, j.LeftColumns)
	rightSchema = renameSchema(rightSchema, j.RightColumns)

	seen := map[string]bool{}
	for _, c := range leftSchema {
		seen[c.Name] = true
	}
	out := append(sql.Schema{}, leftSchema...)
	for _, c := range rightSchema {
		name := c.Name
		if seen[name] {
			name += "_right"
		}
		out = append(out, sql.Column{Name: name, Type: c.Type})
	}
	return out, nil
}

func renameSchema(schema sql.Schema, rename map[string]string) sql.Schema {
	if rename == nil {
		return schema
	}
	out := make(sql.Schema, len(schema))
	for i, c := range schema {
		name := c.Name
		if mapped, ok := rename[c.Name]; ok {
			name = mapped
		}
		out[i] = sql.Column{Name: name, Type: c.Type}
	}
	return out
}

func (j *Join) Collect(ctx *sql.Context) (*memory.Table, error) {
	left, err := j.Left.Collect(ctx)
	if err != nil {
		return nil, err
	}
	right, err := j.Right.Collect(ctx)
	if err != nil {
		return nil, err
	}

	if j.LeftColumns != nil {
		left, err = left.Project(projectionColumns(left.Schema, j.LeftColumns), j.LeftColumns)
		if err != nil {
			return nil, err
		}
	}
	if j.RightColumns != nil {
		right, err = right.Project(projectionColumns(right.Schema, j.RightColumns), j.RightColumns)
		if err != nil {
			return nil, err
		}
	}

	return memory.Join(left, right, memory.JoinOptions{
		How:     j.How,
		LeftOn:  renamedKeys(j.LeftOn, j.LeftColumns),
		RightOn: renamedKeys(j.RightOn, j.RightColumns),
	})
}

// projectionColumns returns the original (pre-rename) column names listed
// as keys of rename, the replacing projection §4 supplemented features
// calls for: only the named columns survive on that side.
func projectionColumns(schema sql.Schema, rename map[string]string) []string {
	out := make([]string, 0, len(rename))
	for _, c := range schema {
		if _, ok := rename[c.Name]; ok {
			out = append(out, c.Name)
		}
	}
	return out
}

func renamedKeys(keys []string, rename map[string]string) []string {
	if rename == nil {
		return keys
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		if mapped, ok := rename[k]; ok {
			out[i] = mapped
		} else {
			out[i] = k
		}
	}
	return out
}
