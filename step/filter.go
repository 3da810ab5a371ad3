package step

import (
	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/sql/plan"
	"github.com/milaboratory/ptabler/tablespace"
)

// Filter implements the `filter` step (§3, §4.2): predicate rows of
// InputTable, writing the result to OutputTable (which may equal
// InputTable).
type Filter struct {
	InputTable  string
	OutputTable string
	Condition   sql.Expression
}

func (f *Filter) Tag() string { return "filter" }

func (f *Filter) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	node, err := space.Get(f.InputTable)
	if err != nil {
		return nil, nil, err
	}
	return space.With(f.OutputTable, plan.NewFilter(node, f.Condition)), nil, nil
}
