package plan

import (
	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql"
)

// Concat implements the `concatenate` step: vertical stacking of N tables
// with identical column sets (§3, §4.2).
type Concat struct {
	Children []Node
}

// NewConcat builds a concat plan node.
func NewConcat(children []Node) *Concat { return &Concat{Children: children} }

func (c *Concat) Schema(ctx *sql.Context) (sql.Schema, error) {
	if len(c.Children) == 0 {
		return sql.Schema{}, nil
	}
	return c.Children[0].Schema(ctx)
}

func (c *Concat) Collect(ctx *sql.Context) (*memory.Table, error) {
	tables := make([]*memory.Table, len(c.Children))
	for i, child := range c.Children {
		t, err := child.Collect(ctx)
		if err != nil {
			return nil, err
		}
		tables[i] = t
	}
	return memory.Concat(tables)
}
