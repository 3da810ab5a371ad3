package sql

import "github.com/milaboratory/ptabler/value"

// Expression is the contract every tagged expression node satisfies once
// lowered (§4.1): given a row matching some Schema, produce a scalar value.
//
// Dispatch across the closed set of expression tags is exhaustive and
// lives in package sql/expression; this interface is the only thing a plan
// node needs to know about an expression tree in order to evaluate it.
type Expression interface {
	// Eval computes the expression's value for row.
	Eval(ctx *Context, row Row) (interface{}, error)
	// Type returns the expression's static result type.
	Type() value.Type
	// Children returns the expression's direct operands, for Walk and for
	// rebuilding a tree with WithChildren.
	Children() []Expression
	// WithChildren returns a copy of the expression with its children
	// replaced; len(children) must equal len(e.Children()).
	WithChildren(children ...Expression) (Expression, error)
	// String renders the expression for error messages and debugging.
	String() string
}

// WindowExpression is implemented by expression nodes whose evaluation
// requires the full row-set of their input table rather than a single row
// in isolation — rank and cumsum (§3, §4.1). Eval on a WindowExpression
// always fails; plan nodes that may host a window expression (add_columns)
// must type-switch for this interface and call EvalWindow once with the
// full pre-materialized row-set instead; partitioning happens inside
// EvalWindow.
type WindowExpression interface {
	Expression
	// EvalWindow computes one output value per row in rows, given the full
	// row-set and schema of the table the window expression was resolved
	// against.
	EvalWindow(ctx *Context, rows []Row, schema Schema) ([]interface{}, error)
}

// Visitor is called once per node during Walk; returning nil stops descent
// into that node's children, matching the teacher's sql.Visitor contract
// exercised in sql/expression/expression_test.go's TestWalkVisitsChildren.
type Visitor func(e Expression) Visitor

// Walk traverses expr depth-first, calling v at each node.
func Walk(v Visitor, expr Expression) {
	if expr == nil {
		return
	}
	next := v(expr)
	if next == nil {
		return
	}
	for _, c := range expr.Children() {
		Walk(next, c)
	}
}
