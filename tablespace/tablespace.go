// Package tablespace implements the table space of §3/§4.3: a mapping
// from table name to a lazy plan.Node, threaded through workflow steps
// with value semantics — a step's output space is a new mapping; the
// space it was derived from is untouched and remains usable by anything
// still holding a reference to it (§8 step-purity property).
package tablespace

import (
	"github.com/milaboratory/ptabler/sql/plan"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrTableNotFound is raised when a step references a table absent from
// the space (§7 taxonomy item 2: structural error, fatal at execute time).
var ErrTableNotFound = errors.NewKind("table %q not found in table space; known tables: %v")

// Space is an immutable-by-convention name -> plan.Node mapping. Every
// mutating method returns a new Space; the receiver is never modified.
type Space map[string]plan.Node

// Empty returns the initial, table-less space a workflow starts from.
func Empty() Space {
	return Space{}
}

// Get looks up a table by name, reporting ErrTableNotFound (with the
// known table names, per §7's user-visible-error contract) if absent.
func (s Space) Get(name string) (plan.Node, error) {
	n, ok := s[name]
	if !ok {
		return nil, ErrTableNotFound.New(name, s.Names())
	}
	return n, nil
}

// With returns a new Space equal to s but with name bound to n,
// overwriting any prior binding of that name.
func (s Space) With(name string, n plan.Node) Space {
	next := make(Space, len(s)+1)
	for k, v := range s {
		next[k] = v
	}
	next[name] = n
	return next
}

// Names returns the known table names, for error messages.
func (s Space) Names() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}
