package step

import (
	"github.com/milaboratory/ptabler/sql/plan"
	"github.com/milaboratory/ptabler/tablespace"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrJoinParameters is a structural error (§7.2): a non-cross join
// missing its key lists.
var ErrJoinParameters = errors.NewKind("join: %s")

// Join implements the `join` step (§3, §4.2).
type Join struct {
	LeftTable, RightTable, OutputTable string
	How                                string
	LeftOn, RightOn                   []string
	LeftColumns, RightColumns         map[string]string
}

func (j *Join) Tag() string { return "join" }

func (j *Join) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	left, err := space.Get(j.LeftTable)
	if err != nil {
		return nil, nil, err
	}
	right, err := space.Get(j.RightTable)
	if err != nil {
		return nil, nil, err
	}
	if j.How != "cross" {
		if len(j.LeftOn) == 0 || len(j.RightOn) == 0 {
			return nil, nil, ErrJoinParameters.New("left_on and right_on are required for how=" + j.How)
		}
		if len(j.LeftOn) != len(j.RightOn) {
			return nil, nil, ErrJoinParameters.New("left_on and right_on must have equal length")
		}
	}
	node := plan.NewJoin(left, right, j.How, j.LeftOn, j.RightOn, j.LeftColumns, j.RightColumns)
	return space.With(j.OutputTable, node), nil, nil
}
