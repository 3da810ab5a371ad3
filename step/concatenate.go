package step

import (
	"github.com/milaboratory/ptabler/sql/plan"
	"github.com/milaboratory/ptabler/tablespace"
)

// Concatenate implements the `concatenate` step (§3, §4.2): vertical
// concat of N named tables into OutputTable.
type Concatenate struct {
	Tables      []string
	OutputTable string
}

func (c *Concatenate) Tag() string { return "concatenate" }

func (c *Concatenate) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	nodes := make([]plan.Node, len(c.Tables))
	for i, name := range c.Tables {
		n, err := space.Get(name)
		if err != nil {
			return nil, nil, err
		}
		nodes[i] = n
	}
	return space.With(c.OutputTable, plan.NewConcat(nodes)), nil, nil
}
