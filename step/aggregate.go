package step

import (
	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql/plan"
	"github.com/milaboratory/ptabler/tablespace"
)

// Aggregate implements the `aggregate` step (§3, §4.2): group by key
// columns, evaluating the named aggregation functions per group.
type Aggregate struct {
	InputTable   string
	OutputTable  string
	GroupBy      []string
	Aggregations []memory.AggSpec
}

func (a *Aggregate) Tag() string { return "aggregate" }

func (a *Aggregate) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	node, err := space.Get(a.InputTable)
	if err != nil {
		return nil, nil, err
	}
	return space.With(a.OutputTable, plan.NewAggregate(node, a.GroupBy, a.Aggregations)), nil, nil
}
