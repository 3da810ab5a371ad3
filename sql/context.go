// Package sql holds the row-evaluation core shared by every expression and
// plan node: the execution Context, the Row and Schema types, and the
// Expression interface that every tagged expression node implements.
//
// It mirrors, at a much smaller scale, the role the teacher's own `sql`
// package plays for go-mysql-server: a small set of interfaces the rest of
// the tree is built against, independent of any one columnar backend.
package sql

import (
	"context"
)

// Context carries the standard Go context through evaluation; it adds no
// fields of its own (the root folder for path resolution lives on
// Settings instead, since it is workflow-scoped rather than
// evaluation-scoped).
type Context struct {
	context.Context
}

// NewContext wraps a context.Context for use in expression evaluation and
// plan execution.
func NewContext(ctx context.Context) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{Context: ctx}
}

// NewEmptyContext returns a Context backed by context.Background(), for use
// in tests and other callers with no ambient context.
func NewEmptyContext() *Context {
	return NewContext(context.Background())
}
