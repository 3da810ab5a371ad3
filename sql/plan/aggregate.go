package plan

import (
	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// Aggregate implements the `aggregate` step: group by GroupBy, evaluating
// Aggregations per group (§3, §4.2). Aggregation expressions are the
// small fixed set of engine primitives enumerated in engine/memory.AggSpec
// (sum, count, mean, min, max, first, last) — spec.md leaves "aggregation
// expressions (engine primitives)" unspecified beyond naming the
// capability, so this reference engine's primitive set is the Open
// Question decision recorded in DESIGN.md.
type Aggregate struct {
	Child        Node
	GroupBy      []string
	Aggregations []memory.AggSpec
}

// NewAggregate builds an aggregate plan node.
func NewAggregate(child Node, groupBy []string, aggregations []memory.AggSpec) *Aggregate {
	return &Aggregate{Child: child, GroupBy: groupBy, Aggregations: aggregations}
}

func (a *Aggregate) Schema(ctx *sql.Context) (sql.Schema, error) {
	childSchema, err := a.Child.Schema(ctx)
	if err != nil {
		return nil, err
	}
	schema := make(sql.Schema, 0, len(a.GroupBy)+len(a.Aggregations))
	for _, name := range a.GroupBy {
		idx := childSchema.IndexOf(name)
		if idx < 0 {
			return nil, sql.ErrColumnNotFound.New(name, childSchema.Names())
		}
		schema = append(schema, childSchema[idx])
	}
	for _, agg := range a.Aggregations {
		schema = append(schema, sql.Column{Name: agg.Name, Type: aggregateResultType(childSchema, agg)})
	}
	return schema, nil
}

func aggregateResultType(schema sql.Schema, agg memory.AggSpec) value.Type {
	switch agg.Func {
	case "count":
		return value.Long
	case "sum", "mean":
		return value.Double
	default:
		idx := schema.IndexOf(agg.Column)
		if idx < 0 {
			return value.Double
		}
		return schema[idx].Type
	}
}

func (a *Aggregate) Collect(ctx *sql.Context) (*memory.Table, error) {
	child, err := a.Child.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return memory.Aggregate(child, a.GroupBy, a.Aggregations)
}
