package expression

import (
	"fmt"
	"math"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// Arithmetic implements the five binary arithmetic tags (plus, minus,
// multiply, truediv, floordiv). As with Comparison, one internal type
// backs all five wire tags.
type Arithmetic struct {
	Op          string
	Left, Right sql.Expression
}

func newArithmetic(op string, l, r sql.Expression) *Arithmetic {
	return &Arithmetic{Op: op, Left: l, Right: r}
}

func NewPlus(l, r sql.Expression) *Arithmetic     { return newArithmetic("plus", l, r) }
func NewMinus(l, r sql.Expression) *Arithmetic    { return newArithmetic("minus", l, r) }
func NewMultiply(l, r sql.Expression) *Arithmetic { return newArithmetic("multiply", l, r) }
func NewTrueDiv(l, r sql.Expression) *Arithmetic  { return newArithmetic("truediv", l, r) }
func NewFloorDiv(l, r sql.Expression) *Arithmetic { return newArithmetic("floordiv", l, r) }

func (a *Arithmetic) Type() value.Type {
	t := widestNumericType(a.Left, a.Right)
	if a.Op == "truediv" || a.Op == "floordiv" {
		// division always yields a floating result, per common engine
		// convention (e.g. Polars truediv/floordiv on integer columns).
		if t == value.Int || t == value.Long {
			return value.Double
		}
	}
	return t
}

func widestNumericType(exprs ...sql.Expression) value.Type {
	widest := value.Int
	rank := map[value.Type]int{value.Int: 0, value.Long: 1, value.Float: 2, value.Double: 3}
	for _, e := range exprs {
		t := e.Type()
		if rank[t] > rank[widest] {
			widest = t
		}
	}
	return widest
}

func (a *Arithmetic) Children() []sql.Expression { return []sql.Expression{a.Left, a.Right} }
func (a *Arithmetic) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrWrongChildCount.New(a.Op, 2, len(children))
	}
	return newArithmetic(a.Op, children[0], children[1]), nil
}
func (a *Arithmetic) String() string {
	return fmt.Sprintf("%s(%s, %s)", a.Op, a.Left, a.Right)
}

func (a *Arithmetic) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	lv, err := a.Left.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	rv, err := a.Right.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	// Null propagation (§3 invariants): any null operand yields null.
	if lv == nil || rv == nil {
		return nil, nil
	}

	lf, _, err := value.AsFloat64(lv)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New(a.Op, err.Error())
	}
	rf, _, err := value.AsFloat64(rv)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New(a.Op, err.Error())
	}

	var result float64
	switch a.Op {
	case "plus":
		result = lf + rf
	case "minus":
		result = lf - rf
	case "multiply":
		result = lf * rf
	case "truediv":
		if rf == 0 {
			if lf == 0 {
				return math.NaN(), nil
			}
			return math.Inf(sign(lf)), nil
		}
		result = lf / rf
	case "floordiv":
		if rf == 0 {
			return nil, sql.ErrInvalidExpression.New("floordiv", "division by zero")
		}
		result = math.Floor(lf / rf)
	default:
		return nil, sql.ErrInvalidExpression.New("arithmetic", "unknown operator "+a.Op)
	}

	return coerceResult(result, a.Type()), nil
}

func sign(f float64) int {
	if f < 0 {
		return -1
	}
	return 1
}

func coerceResult(f float64, t value.Type) interface{} {
	switch t {
	case value.Int:
		return int32(f)
	case value.Long:
		return int64(f)
	case value.Float:
		return float32(f)
	default:
		return f
	}
}

// UnaryArithmetic implements the six unary arithmetic tags (log10, log,
// log2, abs, sqrt, and the unary form of minus — disambiguated from the
// binary `minus` tag by field shape at decode time, per §6).
type UnaryArithmetic struct {
	Op    string
	Child sql.Expression
}

func newUnaryArithmetic(op string, c sql.Expression) *UnaryArithmetic {
	return &UnaryArithmetic{Op: op, Child: c}
}

func NewLog10(c sql.Expression) *UnaryArithmetic    { return newUnaryArithmetic("log10", c) }
func NewLog(c sql.Expression) *UnaryArithmetic       { return newUnaryArithmetic("log", c) }
func NewLog2(c sql.Expression) *UnaryArithmetic       { return newUnaryArithmetic("log2", c) }
func NewAbs(c sql.Expression) *UnaryArithmetic        { return newUnaryArithmetic("abs", c) }
func NewSqrt(c sql.Expression) *UnaryArithmetic       { return newUnaryArithmetic("sqrt", c) }
func NewUnaryMinus(c sql.Expression) *UnaryArithmetic { return newUnaryArithmetic("minus", c) }

func (u *UnaryArithmetic) Type() value.Type {
	if u.Op == "abs" || u.Op == "minus" {
		return u.Child.Type()
	}
	return value.Double
}
func (u *UnaryArithmetic) Children() []sql.Expression { return []sql.Expression{u.Child} }
func (u *UnaryArithmetic) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrWrongChildCount.New(u.Op, 1, len(children))
	}
	return newUnaryArithmetic(u.Op, children[0]), nil
}
func (u *UnaryArithmetic) String() string { return fmt.Sprintf("%s(%s)", u.Op, u.Child) }

func (u *UnaryArithmetic) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := u.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	f, _, err := value.AsFloat64(v)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New(u.Op, err.Error())
	}

	var result float64
	switch u.Op {
	case "log10":
		result = math.Log10(f)
	case "log":
		result = math.Log(f)
	case "log2":
		// Defined as ln(x)/ln(2), per §4.1 — must not use math.Log2, which
		// can differ in edge-case handling of non-positive inputs.
		result = math.Log(f) / math.Log(2)
	case "abs":
		return coerceResult(math.Abs(f), u.Child.Type()), nil
	case "sqrt":
		result = math.Sqrt(f)
	case "minus":
		return coerceResult(-f, u.Child.Type()), nil
	default:
		return nil, sql.ErrInvalidExpression.New("arithmetic", "unknown operator "+u.Op)
	}
	return result, nil
}
