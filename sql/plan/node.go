// Package plan holds the lazy plan nodes the step layer composes (§4.1,
// §4.3): scan, project (select/with_columns/without_columns/add_columns),
// filter, join, aggregate, sort and concat, all collected against the
// reference engine in engine/memory.
//
// Schema() is metadata-only and safe to call without materializing any
// rows — for a scan node this costs a header read (the same contract
// Polars' own scan_csv honors, since the original ptabler is built on
// it), for every other node it is computed purely from the child's
// schema. Collect() is the one operation that actually executes the
// plan: it recurses into children, invokes the matching engine/memory
// primitive, and returns a materialized Table. Laziness (§8) follows
// directly: building a Node tree touches neither Schema() nor Collect().
package plan

import (
	"github.com/milaboratory/ptabler/engine/memory"
	"github.com/milaboratory/ptabler/sql"
)

// Node is a lazy table-valued plan fragment.
type Node interface {
	// Schema returns the node's output schema without collecting rows.
	Schema(ctx *sql.Context) (sql.Schema, error)
	// Collect executes the plan and returns a materialized table.
	Collect(ctx *sql.Context) (*memory.Table, error)
}

// cachingNode memoizes a Collect result for nodes that would otherwise
// recompute their child subtree once per sibling reference in the same
// fold step. No step currently wraps its nodes with Cache.
type cachingNode struct {
	Node
	table *memory.Table
}

func (c *cachingNode) Collect(ctx *sql.Context) (*memory.Table, error) {
	if c.table != nil {
		return c.table, nil
	}
	t, err := c.Node.Collect(ctx)
	if err != nil {
		return nil, err
	}
	c.table = t
	return t, nil
}

// Cache wraps n so repeated Collect calls reuse the first result.
func Cache(n Node) Node {
	return &cachingNode{Node: n}
}
