package step

import (
	"github.com/milaboratory/ptabler/sql/plan"
	"github.com/milaboratory/ptabler/tablespace"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrSortParameters is a structural error (§7.2): a `descending` list
// whose length doesn't match `by` and isn't a single broadcastable value.
var ErrSortParameters = errors.NewKind("sort: %s")

// Sort implements the `sort` step (§3, §4.2): stable sort by By with
// per-column Descending flags, or a single flag applied to every column.
type Sort struct {
	Table      string
	By         []string
	Descending []bool
}

func (s *Sort) Tag() string { return "sort" }

func (s *Sort) Execute(space tablespace.Space, settings Settings) (tablespace.Space, []*plan.Sink, error) {
	node, err := space.Get(s.Table)
	if err != nil {
		return nil, nil, err
	}
	descending, err := expandDescending(s.Descending, len(s.By))
	if err != nil {
		return nil, nil, err
	}
	return space.With(s.Table, plan.NewSort(node, s.By, descending)), nil, nil
}

func expandDescending(descending []bool, n int) ([]bool, error) {
	switch len(descending) {
	case 0:
		return make([]bool, n), nil
	case 1:
		out := make([]bool, n)
		for i := range out {
			out[i] = descending[0]
		}
		return out, nil
	case n:
		return descending, nil
	default:
		return nil, ErrSortParameters.New("'descending' must be a single value or match the length of 'by'")
	}
}
