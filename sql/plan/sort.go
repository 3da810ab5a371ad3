package plan

import (
	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql"
)

// Sort implements the `sort` step: a stable sort by By, each with its own
// Descending flag (§3, §4.2). Descending has already been expanded to
// match len(By) by the sort step's Execute (a one-element list applies to
// all).
type Sort struct {
	Child      Node
	By         []string
	Descending []bool
}

// NewSort builds a sort plan node.
func NewSort(child Node, by []string, descending []bool) *Sort {
	return &Sort{Child: child, By: by, Descending: descending}
}

func (s *Sort) Schema(ctx *sql.Context) (sql.Schema, error) {
	return s.Child.Schema(ctx)
}

func (s *Sort) Collect(ctx *sql.Context) (*memory.Table, error) {
	child, err := s.Child.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return memory.Sort(child, s.By, s.Descending)
}
