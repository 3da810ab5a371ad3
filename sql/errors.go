package sql

import errors "gopkg.in/src-d/go-errors.v1"

// Error kinds shared by the expression, plan, step and workflow layers,
// following the teacher's convention (see auth.ErrNotAuthorized) of one
// package-level errors.Kind per failure mode rather than ad-hoc
// fmt.Errorf calls.
var (
	// ErrColumnNotFound is raised when a `col` expression names a column
	// absent from the row's schema at resolve time.
	ErrColumnNotFound = errors.NewKind("column %q not found in schema %v")

	// ErrTypeMismatch is raised by kernels that receive an operand of a
	// type they cannot operate on (e.g. arithmetic on a string that does
	// not coerce to a number).
	ErrTypeMismatch = errors.NewKind("%s: %s")

	// ErrInvalidExpression is raised for structural invariant violations
	// caught at lowering time (§3 invariants): wrong arity, mutually
	// exclusive fields both set, empty required lists.
	ErrInvalidExpression = errors.NewKind("invalid %s expression: %s")

	// ErrWrongChildCount is raised by WithChildren implementations when
	// called with the wrong number of replacement children.
	ErrWrongChildCount = errors.NewKind("%s: expected %d children, got %d")
)
