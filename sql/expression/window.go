package expression

import (
	"fmt"
	"sort"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// partitionKey renders a row's partition-by values into a comparable Go
// value usable as a map key.
func partitionKey(ctx *sql.Context, row sql.Row, partitionBy []sql.Expression) (string, error) {
	key := ""
	for _, p := range partitionBy {
		v, err := p.Eval(ctx, row)
		if err != nil {
			return "", err
		}
		key += fmt.Sprintf("\x1f%v", v)
	}
	return key, nil
}

func groupByPartition(ctx *sql.Context, rows []sql.Row, partitionBy []sql.Expression) (map[string][]int, []string, error) {
	groups := map[string][]int{}
	var order []string
	for i, row := range rows {
		key, err := partitionKey(ctx, row, partitionBy)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}
	return groups, order, nil
}

// Rank implements `rank`: a dense ordinal rank within each partition,
// ties broken by input row order (§3, §4.1).
type Rank struct {
	OrderBy     []sql.Expression
	PartitionBy []sql.Expression
	Descending  bool
}

// NewRank validates the non-empty order_by invariant and constructs the
// expression.
func NewRank(orderBy, partitionBy []sql.Expression, descending bool) (*Rank, error) {
	if len(orderBy) == 0 {
		return nil, sql.ErrInvalidExpression.New("rank", "'order_by' must be non-empty")
	}
	return &Rank{OrderBy: orderBy, PartitionBy: partitionBy, Descending: descending}, nil
}

func (r *Rank) Type() value.Type { return value.Long }
func (r *Rank) Children() []sql.Expression {
	children := append([]sql.Expression{}, r.OrderBy...)
	return append(children, r.PartitionBy...)
}
func (r *Rank) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(r.OrderBy)+len(r.PartitionBy) {
		return nil, sql.ErrWrongChildCount.New("rank", len(r.OrderBy)+len(r.PartitionBy), len(children))
	}
	return &Rank{
		OrderBy:     append([]sql.Expression{}, children[:len(r.OrderBy)]...),
		PartitionBy: append([]sql.Expression{}, children[len(r.OrderBy):]...),
		Descending:  r.Descending,
	}, nil
}
func (r *Rank) String() string { return "rank(...)" }

func (r *Rank) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrInvalidExpression.New("rank", "window expression requires full-table evaluation")
}

func (r *Rank) EvalWindow(ctx *sql.Context, rows []sql.Row, schema sql.Schema) ([]interface{}, error) {
	groups, order, err := groupByPartition(ctx, rows, r.PartitionBy)
	if err != nil {
		return nil, err
	}

	keys := make([][]interface{}, len(rows))
	for i, row := range rows {
		k := make([]interface{}, len(r.OrderBy))
		for j, ob := range r.OrderBy {
			v, err := ob.Eval(ctx, row)
			if err != nil {
				return nil, err
			}
			k[j] = v
		}
		keys[i] = k
	}

	result := make([]interface{}, len(rows))
	for _, pk := range order {
		indices := append([]int{}, groups[pk]...)
		sort.SliceStable(indices, func(a, b int) bool {
			ia, ib := indices[a], indices[b]
			cmp := compareKeys(keys[ia], keys[ib])
			if r.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
		for rank, idx := range indices {
			result[idx] = int64(rank + 1)
		}
	}
	return result, nil
}

func compareKeys(a, b []interface{}) int {
	for i := range a {
		if a[i] == nil && b[i] == nil {
			continue
		}
		if a[i] == nil {
			return -1
		}
		if b[i] == nil {
			return 1
		}
		cmp, err := compareValues(a[i], b[i])
		if err != nil {
			continue
		}
		if cmp != 0 {
			return cmp
		}
	}
	return 0
}

// Cumsum implements `cumsum`: within each partition, rows are sorted by
// [value] ++ additional_order_by with a uniform direction, then the
// cumulative sum of value is computed in that order and re-aligned to the
// original row positions (§3, §4.1, §9 open question — value participates
// as the primary sort key, matched as documented).
type Cumsum struct {
	Value             sql.Expression
	AdditionalOrderBy []sql.Expression
	PartitionBy       []sql.Expression
	Descending        bool
}

func NewCumsum(value sql.Expression, additionalOrderBy, partitionBy []sql.Expression, descending bool) *Cumsum {
	return &Cumsum{Value: value, AdditionalOrderBy: additionalOrderBy, PartitionBy: partitionBy, Descending: descending}
}

func (c *Cumsum) Type() value.Type { return value.Double }
func (c *Cumsum) Children() []sql.Expression {
	children := []sql.Expression{c.Value}
	children = append(children, c.AdditionalOrderBy...)
	children = append(children, c.PartitionBy...)
	return children
}
func (c *Cumsum) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	want := 1 + len(c.AdditionalOrderBy) + len(c.PartitionBy)
	if len(children) != want {
		return nil, sql.ErrWrongChildCount.New("cumsum", want, len(children))
	}
	return &Cumsum{
		Value:             children[0],
		AdditionalOrderBy: append([]sql.Expression{}, children[1:1+len(c.AdditionalOrderBy)]...),
		PartitionBy:       append([]sql.Expression{}, children[1+len(c.AdditionalOrderBy):]...),
		Descending:        c.Descending,
	}, nil
}
func (c *Cumsum) String() string { return "cumsum(...)" }

func (c *Cumsum) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, sql.ErrInvalidExpression.New("cumsum", "window expression requires full-table evaluation")
}

func (c *Cumsum) EvalWindow(ctx *sql.Context, rows []sql.Row, schema sql.Schema) ([]interface{}, error) {
	groups, order, err := groupByPartition(ctx, rows, c.PartitionBy)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(rows))
	haveValue := make([]bool, len(rows))
	sortKeys := make([][]interface{}, len(rows))
	for i, row := range rows {
		v, err := c.Value.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		if v != nil {
			f, _, err := value.AsFloat64(v)
			if err != nil {
				return nil, sql.ErrTypeMismatch.New("cumsum", err.Error())
			}
			values[i], haveValue[i] = f, true
		}

		key := make([]interface{}, 1+len(c.AdditionalOrderBy))
		key[0] = v
		for j, ob := range c.AdditionalOrderBy {
			ov, err := ob.Eval(ctx, row)
			if err != nil {
				return nil, err
			}
			key[j+1] = ov
		}
		sortKeys[i] = key
	}

	result := make([]interface{}, len(rows))
	for _, pk := range order {
		indices := append([]int{}, groups[pk]...)
		sort.SliceStable(indices, func(a, b int) bool {
			ia, ib := indices[a], indices[b]
			cmp := compareKeys(sortKeys[ia], sortKeys[ib])
			if c.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
		running := 0.0
		for _, idx := range indices {
			if haveValue[idx] {
				running += values[idx]
			}
			result[idx] = running
		}
	}
	return result, nil
}
