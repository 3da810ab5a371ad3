package memory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
	errors "gopkg.in/src-d/go-errors.v1"
)

// keyString renders the key columns of a row into a single delimited
// string. Join hashes it (for bucketing) and compares it directly (for
// equality, to resolve hash collisions); Aggregate uses it directly as a
// map key.
func keyString(row sql.Row, idx []int) string {
	var b strings.Builder
	for _, i := range idx {
		fmt.Fprintf(&b, "\x1f%v", row[i])
	}
	return b.String()
}

// hashKey hashes a composite key string with xxhash, mirroring the
// teacher's own use of cespare/xxhash for row/key hashing. The hash is
// only ever used to bucket rows; equality is always re-checked against
// the original key string to resolve collisions.
func hashKey(s string) uint64 {
	return xxhash.Sum64String(s)
}

func columnIndices(schema sql.Schema, names []string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		p := schema.IndexOf(n)
		if p < 0 {
			return nil, sql.ErrColumnNotFound.New(n, schema.Names())
		}
		idx[i] = p
	}
	return idx, nil
}

// JoinOptions mirrors the recognized `join` options (§3, §4.2). LeftOn and
// RightOn are matched positionally and must have equal length unless
// How is "cross".
type JoinOptions struct {
	How     string
	LeftOn  []string
	RightOn []string
}

// ErrJoinKeys is a structural error (§7.2): non-cross join missing or
// mismatched key lists.
var ErrJoinKeys = errors.NewKind("join: %s")

// Join implements inner/left/right/outer/cross joins over two already
// key-projected tables (callers apply left_columns/right_columns renaming
// via Table.Project before calling Join, per §4.2's pre-join projection
// contract).
func Join(left, right *Table, opts JoinOptions) (*Table, error) {
	outSchema := joinedSchema(left.Schema, right.Schema)

	if opts.How == "cross" {
		rows := make([]sql.Row, 0, len(left.Rows)*len(right.Rows))
		for _, lr := range left.Rows {
			for _, rr := range right.Rows {
				rows = append(rows, concatRow(lr, rr))
			}
		}
		return NewTable(outSchema, rows), nil
	}

	if len(opts.LeftOn) == 0 || len(opts.RightOn) == 0 {
		return nil, ErrJoinKeys.New("left_on and right_on are required for how=" + opts.How)
	}
	if len(opts.LeftOn) != len(opts.RightOn) {
		return nil, ErrJoinKeys.New("left_on and right_on must have equal length")
	}

	leftIdx, err := columnIndices(left.Schema, opts.LeftOn)
	if err != nil {
		return nil, err
	}
	rightIdx, err := columnIndices(right.Schema, opts.RightOn)
	if err != nil {
		return nil, err
	}

	rightBuckets := map[uint64][]int{}
	for i, row := range right.Rows {
		k := keyString(row, rightIdx)
		h := hashKey(k)
		rightBuckets[h] = append(rightBuckets[h], i)
	}
	matchedRight := make([]bool, len(right.Rows))

	nullRight := make(sql.Row, len(right.Schema))
	nullLeft := make(sql.Row, len(left.Schema))

	var rows []sql.Row
	for _, lr := range left.Rows {
		lk := keyString(lr, leftIdx)
		h := hashKey(lk)
		var matched bool
		for _, ri := range rightBuckets[h] {
			rr := right.Rows[ri]
			if keyString(rr, rightIdx) != lk {
				continue
			}
			matched = true
			matchedRight[ri] = true
			rows = append(rows, concatRow(lr, rr))
		}
		if !matched && (opts.How == "left" || opts.How == "outer") {
			rows = append(rows, concatRow(lr, nullRight))
		}
	}
	if opts.How == "right" || opts.How == "outer" {
		for ri, rr := range right.Rows {
			if matchedRight[ri] {
				continue
			}
			rows = append(rows, concatRow(nullLeft, rr))
		}
	}

	return NewTable(outSchema, rows), nil
}

func concatRow(l, r sql.Row) sql.Row {
	out := make(sql.Row, 0, len(l)+len(r))
	out = append(out, l...)
	out = append(out, r...)
	return out
}

// joinedSchema concatenates left and right schemas; a right column whose
// name collides with a left column is suffixed "_right" rather than
// auto-coalesced (§9 design note, §4.2): callers manage collisions via
// left_columns/right_columns pre-projection.
func joinedSchema(left, right sql.Schema) sql.Schema {
	seen := map[string]bool{}
	for _, c := range left {
		seen[c.Name] = true
	}
	out := make(sql.Schema, 0, len(left)+len(right))
	out = append(out, left...)
	for _, c := range right {
		name := c.Name
		if seen[name] {
			name += "_right"
		}
		out = append(out, sql.Column{Name: name, Type: c.Type})
	}
	return out
}

// AggSpec is one output column of an `aggregate` step: Func applied to
// Column, aliased to Name.
type AggSpec struct {
	Name   string
	Column string
	Func   string // sum, count, mean, min, max, first, last
}

// Aggregate groups t by the named groupBy columns and evaluates aggs per
// group, in first-seen group order (determinism, §8).
func Aggregate(t *Table, groupBy []string, aggs []AggSpec) (*Table, error) {
	groupIdx, err := columnIndices(t.Schema, groupBy)
	if err != nil {
		return nil, err
	}

	type group struct {
		key     string
		rowIdxs []int
	}
	order := map[string]int{}
	var groups []group
	for i, row := range t.Rows {
		k := keyString(row, groupIdx)
		pos, ok := order[k]
		if !ok {
			pos = len(groups)
			order[k] = pos
			groups = append(groups, group{key: k})
		}
		groups[pos].rowIdxs = append(groups[pos].rowIdxs, i)
	}

	schema := make(sql.Schema, 0, len(groupBy)+len(aggs))
	for i, name := range groupBy {
		schema = append(schema, sql.Column{Name: name, Type: t.Schema[groupIdx[i]].Type})
	}
	for _, a := range aggs {
		schema = append(schema, sql.Column{Name: a.Name, Type: aggResultType(t, a)})
	}

	rows := make([]sql.Row, 0, len(groups))
	for _, g := range groups {
		row := make(sql.Row, 0, len(schema))
		first := t.Rows[g.rowIdxs[0]]
		for _, idx := range groupIdx {
			row = append(row, first[idx])
		}
		for _, a := range aggs {
			v, err := evalAgg(t, g.rowIdxs, a)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return NewTable(schema, rows), nil
}

func aggResultType(t *Table, a AggSpec) value.Type {
	if a.Func == "count" {
		return value.Long
	}
	if a.Func == "sum" || a.Func == "mean" {
		return value.Double
	}
	idx := t.Schema.IndexOf(a.Column)
	if idx < 0 {
		return value.Double
	}
	return t.Schema[idx].Type
}

func evalAgg(t *Table, rowIdxs []int, a AggSpec) (interface{}, error) {
	if a.Func == "count" {
		return int64(len(rowIdxs)), nil
	}

	colIdx := t.Schema.IndexOf(a.Column)
	if colIdx < 0 {
		return nil, sql.ErrColumnNotFound.New(a.Column, t.Schema.Names())
	}

	switch a.Func {
	case "first":
		return t.Rows[rowIdxs[0]][colIdx], nil
	case "last":
		return t.Rows[rowIdxs[len(rowIdxs)-1]][colIdx], nil
	}

	var sum float64
	var n int
	var best float64
	haveBest := false
	for _, ri := range rowIdxs {
		v := t.Rows[ri][colIdx]
		if v == nil {
			continue
		}
		f, _, err := value.AsFloat64(v)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New("aggregate:"+a.Func, err.Error())
		}
		sum += f
		n++
		if !haveBest {
			best, haveBest = f, true
			continue
		}
		if a.Func == "min" && f < best {
			best = f
		}
		if a.Func == "max" && f > best {
			best = f
		}
	}

	switch a.Func {
	case "sum":
		return sum, nil
	case "mean":
		if n == 0 {
			return nil, nil
		}
		return sum / float64(n), nil
	case "min", "max":
		if !haveBest {
			return nil, nil
		}
		return value.Coerce(best, t.Schema[colIdx].Type)
	default:
		return nil, sql.ErrInvalidExpression.New("aggregate", "unknown function "+a.Func)
	}
}

// Sort implements the `sort` step: a stable sort by the named columns,
// each with its own direction. Nulls sort last regardless of direction,
// a deterministic tie-breaking rule this reference engine imposes in the
// absence of a prescribed one (§4.2 leaves null ordering to the engine).
func Sort(t *Table, by []string, descending []bool) (*Table, error) {
	idx, err := columnIndices(t.Schema, by)
	if err != nil {
		return nil, err
	}
	rows := make([]sql.Row, len(t.Rows))
	copy(rows, t.Rows)

	sort.SliceStable(rows, func(a, b int) bool {
		for i, colIdx := range idx {
			av, bv := rows[a][colIdx], rows[b][colIdx]
			cmp, ok := compareScalars(av, bv)
			if !ok {
				continue
			}
			// A nil operand always sorts last, independent of direction;
			// only a comparison between two non-nil values flips with
			// descending[i].
			if descending[i] && av != nil && bv != nil {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	return NewTable(t.Schema, rows), nil
}

// compareScalars orders two cell values, treating nil as greater than any
// non-nil value (sorts last). ok is false only when both are nil (no
// ordering information).
func compareScalars(a, b interface{}) (cmp int, ok bool) {
	if a == nil && b == nil {
		return 0, false
	}
	if a == nil {
		return 1, true
	}
	if b == nil {
		return -1, true
	}
	if as, ok := a.(string); ok {
		bs, _, _ := value.AsString(b)
		return strings.Compare(as, bs), true
	}
	af, _, _ := value.AsFloat64(a)
	bf, _, _ := value.AsFloat64(b)
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}

// Concat implements the `concatenate` step: vertical stacking of tables
// whose column sets match by name (order may differ; the first table's
// order wins).
func Concat(tables []*Table) (*Table, error) {
	if len(tables) == 0 {
		return NewTable(sql.Schema{}, nil), nil
	}
	schema := tables[0].Schema
	names := schema.Names()

	var rows []sql.Row
	for ti, t := range tables {
		if ti == 0 {
			rows = append(rows, t.Rows...)
			continue
		}
		idx, err := columnIndices(t.Schema, names)
		if err != nil {
			return nil, sql.ErrInvalidExpression.New("concatenate", "table "+strconv.Itoa(ti)+" has a mismatched column set: "+err.Error())
		}
		for _, row := range t.Rows {
			out := make(sql.Row, len(idx))
			for i, srcIdx := range idx {
				out[i] = row[srcIdx]
			}
			rows = append(rows, out)
		}
	}
	return NewTable(schema, rows), nil
}
