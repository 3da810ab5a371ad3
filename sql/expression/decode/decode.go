// Package decode implements the wire-format contract of §6: tag-discriminated
// JSON decoding of expression trees into sql/expression's evaluable
// Expression implementations. Decode IS the "lower this node to a column
// expression" step of §4.1 — there is no separate optimizer pass between
// the wire format and the evaluable tree, so the exhaustive tag switch
// below is the single lowering function the design notes (§9) call for.
//
// Field names on the wire are camelCase; tag values are the lowercase
// snake_case strings enumerated in §6. Column references are left
// unresolved (expression.ColumnRef); binding them to a schema is a
// separate pass (expression.Resolve), run by the plan layer once the
// input table's schema is known.
package decode

import (
	"encoding/json"
	"fmt"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/sql/expression"
	"github.com/milaboratory/ptabler/value"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrUnknownTag is a decode error (§7.1): an unrecognized `type` value.
var ErrUnknownTag = errors.NewKind("unknown expression tag %q")

// ErrMalformed is a decode error for a tag whose JSON shape doesn't match
// its expected fields.
var ErrMalformed = errors.NewKind("malformed %q expression: %s")

type tagOnly struct {
	Type string `json:"type"`
}

// Decode recognizes the `type` discriminator of raw and dispatches to the
// matching expression constructor, recursing into any nested expression
// fields. It rejects unknown tags rather than ignoring them (§9).
func Decode(raw json.RawMessage) (sql.Expression, error) {
	var head tagOnly
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, ErrMalformed.New("<unknown>", err.Error())
	}

	switch head.Type {
	case "gt", "ge", "eq", "lt", "le", "neq":
		return decodeComparison(head.Type, raw)
	case "plus", "multiply", "truediv", "floordiv":
		return decodeBinaryArithmetic(head.Type, raw)
	case "minus":
		return decodeMinus(raw)
	case "log10", "log", "log2", "abs", "sqrt":
		return decodeUnaryArithmetic(head.Type, raw)
	case "and":
		operands, err := decodeOperands("and", raw)
		if err != nil {
			return nil, err
		}
		return expression.NewAnd(operands...), nil
	case "or":
		operands, err := decodeOperands("or", raw)
		if err != nil {
			return nil, err
		}
		return expression.NewOr(operands...), nil
	case "not":
		return decodeUnary(head.Type, raw, func(c sql.Expression) (sql.Expression, error) {
			return expression.NewNot(c), nil
		})
	case "is_na":
		return decodeUnary(head.Type, raw, func(c sql.Expression) (sql.Expression, error) {
			return expression.NewIsNa(c), nil
		})
	case "is_not_na":
		return decodeUnary(head.Type, raw, func(c sql.Expression) (sql.Expression, error) {
			return expression.NewIsNotNa(c), nil
		})
	case "col":
		return decodeCol(raw)
	case "const":
		return decodeConst(raw)
	case "min":
		return decodeVariadic(expression.NewMin, raw)
	case "max":
		return decodeVariadic(expression.NewMax, raw)
	case "str_join":
		return decodeStrJoin(raw)
	case "to_upper":
		return decodeUnary(head.Type, raw, func(c sql.Expression) (sql.Expression, error) {
			return expression.NewToUpper(c), nil
		})
	case "to_lower":
		return decodeUnary(head.Type, raw, func(c sql.Expression) (sql.Expression, error) {
			return expression.NewToLower(c), nil
		})
	case "str_len":
		return decodeUnary(head.Type, raw, func(c sql.Expression) (sql.Expression, error) {
			return expression.NewStrLen(c), nil
		})
	case "substring":
		return decodeSubstring(raw)
	case "str_replace":
		return decodeStrReplace(raw)
	case "struct_field":
		return decodeStructField(raw)
	case "hash":
		return decodeHash(raw)
	case "string_distance":
		return decodeStringDistance(raw)
	case "fuzzy_string_filter":
		return decodeFuzzyFilter(raw)
	case "when_then_otherwise":
		return decodeConditional(raw)
	case "rank":
		return decodeRank(raw)
	case "cumsum":
		return decodeCumsum(raw)
	default:
		return nil, ErrUnknownTag.New(head.Type)
	}
}

// --- comparisons & arithmetic ---

type binaryWire struct {
	Type string          `json:"type"`
	Lhs  json.RawMessage `json:"lhs"`
	Rhs  json.RawMessage `json:"rhs"`
}

func decodeComparison(tag string, raw json.RawMessage) (sql.Expression, error) {
	lhs, rhs, err := decodeBinaryOperands(tag, raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "gt":
		return expression.NewGt(lhs, rhs), nil
	case "ge":
		return expression.NewGe(lhs, rhs), nil
	case "eq":
		return expression.NewEq(lhs, rhs), nil
	case "lt":
		return expression.NewLt(lhs, rhs), nil
	case "le":
		return expression.NewLe(lhs, rhs), nil
	case "neq":
		return expression.NewNeq(lhs, rhs), nil
	}
	return nil, ErrUnknownTag.New(tag)
}

func decodeBinaryArithmetic(tag string, raw json.RawMessage) (sql.Expression, error) {
	lhs, rhs, err := decodeBinaryOperands(tag, raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "plus":
		return expression.NewPlus(lhs, rhs), nil
	case "multiply":
		return expression.NewMultiply(lhs, rhs), nil
	case "truediv":
		return expression.NewTrueDiv(lhs, rhs), nil
	case "floordiv":
		return expression.NewFloorDiv(lhs, rhs), nil
	}
	return nil, ErrUnknownTag.New(tag)
}

func decodeBinaryOperands(tag string, raw json.RawMessage) (sql.Expression, sql.Expression, error) {
	var w binaryWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, nil, ErrMalformed.New(tag, err.Error())
	}
	lhs, err := Decode(w.Lhs)
	if err != nil {
		return nil, nil, err
	}
	rhs, err := Decode(w.Rhs)
	if err != nil {
		return nil, nil, err
	}
	return lhs, rhs, nil
}

// decodeMinus disambiguates the shared `minus` tag by field shape (§6):
// lhs+rhs means binary subtraction, a bare `value` means unary negation.
func decodeMinus(raw json.RawMessage) (sql.Expression, error) {
	var probe struct {
		Lhs   json.RawMessage `json:"lhs"`
		Rhs   json.RawMessage `json:"rhs"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, ErrMalformed.New("minus", err.Error())
	}
	if probe.Value != nil {
		child, err := Decode(probe.Value)
		if err != nil {
			return nil, err
		}
		return expression.NewUnaryMinus(child), nil
	}
	lhs, rhs, err := decodeBinaryOperands("minus", raw)
	if err != nil {
		return nil, err
	}
	return expression.NewMinus(lhs, rhs), nil
}

func decodeUnaryArithmetic(tag string, raw json.RawMessage) (sql.Expression, error) {
	return decodeUnary(tag, raw, func(c sql.Expression) (sql.Expression, error) {
		switch tag {
		case "log10":
			return expression.NewLog10(c), nil
		case "log":
			return expression.NewLog(c), nil
		case "log2":
			return expression.NewLog2(c), nil
		case "abs":
			return expression.NewAbs(c), nil
		case "sqrt":
			return expression.NewSqrt(c), nil
		}
		return nil, ErrUnknownTag.New(tag)
	})
}

type unaryWire struct {
	Value json.RawMessage `json:"value"`
}

func decodeUnary(tag string, raw json.RawMessage, build func(sql.Expression) (sql.Expression, error)) (sql.Expression, error) {
	var w unaryWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New(tag, err.Error())
	}
	child, err := Decode(w.Value)
	if err != nil {
		return nil, err
	}
	return build(child)
}

// --- boolean logic & reducers ---

type variadicWire struct {
	Operands []json.RawMessage `json:"operands"`
}

func decodeOperands(tag string, raw json.RawMessage) ([]sql.Expression, error) {
	var w variadicWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New(tag, err.Error())
	}
	operands := make([]sql.Expression, len(w.Operands))
	for i, o := range w.Operands {
		e, err := Decode(o)
		if err != nil {
			return nil, err
		}
		operands[i] = e
	}
	return operands, nil
}

func decodeVariadic(build func(...sql.Expression) *expression.Reducer, raw json.RawMessage) (sql.Expression, error) {
	operands, err := decodeOperands("min/max", raw)
	if err != nil {
		return nil, err
	}
	return build(operands...), nil
}

// --- leaves ---

func decodeCol(raw json.RawMessage) (sql.Expression, error) {
	var w struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("col", err.Error())
	}
	return expression.NewColumnRef(w.Name), nil
}

func decodeConst(raw json.RawMessage) (sql.Expression, error) {
	var w struct {
		Value interface{} `json:"value"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("const", err.Error())
	}
	return expression.NewLiteral(w.Value, inferLiteralType(w.Value)), nil
}

// inferLiteralType maps a decoded JSON scalar to a value.Type; JSON has no
// int/float distinction, so numeric literals are typed double unless they
// decode as a whole number, in which case they're typed long.
func inferLiteralType(v interface{}) value.Type {
	switch t := v.(type) {
	case string:
		return value.String
	case bool:
		return value.Bool
	case float64:
		if t == float64(int64(t)) {
			return value.Long
		}
		return value.Double
	case nil:
		return value.Double
	default:
		return value.Double
	}
}

// --- string operations ---

func decodeStrJoin(raw json.RawMessage) (sql.Expression, error) {
	var w struct {
		Operands  []json.RawMessage `json:"operands"`
		Delimiter *string           `json:"delimiter"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("str_join", err.Error())
	}
	operands := make([]sql.Expression, len(w.Operands))
	for i, o := range w.Operands {
		e, err := Decode(o)
		if err != nil {
			return nil, err
		}
		operands[i] = e
	}
	delim := ""
	if w.Delimiter != nil {
		delim = *w.Delimiter
	}
	return expression.NewStrJoin(delim, operands...), nil
}

func decodeSubstring(raw json.RawMessage) (sql.Expression, error) {
	var w struct {
		Value  json.RawMessage `json:"value"`
		Start  int             `json:"start"`
		Length *int            `json:"length"`
		End    *int             `json:"end"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("substring", err.Error())
	}
	child, err := Decode(w.Value)
	if err != nil {
		return nil, err
	}
	return expression.NewSubstring(child, w.Start, w.Length, w.End)
}

func decodeStrReplace(raw json.RawMessage) (sql.Expression, error) {
	var w struct {
		Value       json.RawMessage `json:"value"`
		Pattern     string          `json:"pattern"`
		Replacement string          `json:"replacement"`
		ReplaceAll  bool            `json:"replaceAll"`
		Literal     bool            `json:"literal"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("str_replace", err.Error())
	}
	child, err := Decode(w.Value)
	if err != nil {
		return nil, err
	}
	return expression.NewStrReplace(child, w.Pattern, w.Replacement, w.ReplaceAll, w.Literal), nil
}

func decodeStructField(raw json.RawMessage) (sql.Expression, error) {
	var w struct {
		Struct json.RawMessage `json:"struct"`
		Fields string          `json:"fields"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("struct_field", err.Error())
	}
	child, err := Decode(w.Struct)
	if err != nil {
		return nil, err
	}
	return expression.NewStructField(child, w.Fields), nil
}

// --- hash & fuzzy string ---

func decodeHash(raw json.RawMessage) (sql.Expression, error) {
	var w struct {
		Value    json.RawMessage `json:"value"`
		HashType string          `json:"hashType"`
		Encoding string          `json:"encoding"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("hash", err.Error())
	}
	child, err := Decode(w.Value)
	if err != nil {
		return nil, err
	}
	return expression.NewHash(child, w.HashType, w.Encoding)
}

func decodeStringDistance(raw json.RawMessage) (sql.Expression, error) {
	var w struct {
		String1          json.RawMessage `json:"string1"`
		String2          json.RawMessage `json:"string2"`
		Metric           string          `json:"metric"`
		ReturnSimilarity bool            `json:"returnSimilarity"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("string_distance", err.Error())
	}
	left, err := Decode(w.String1)
	if err != nil {
		return nil, err
	}
	right, err := Decode(w.String2)
	if err != nil {
		return nil, err
	}
	return expression.NewStringDistance(left, right, w.Metric, w.ReturnSimilarity), nil
}

func decodeFuzzyFilter(raw json.RawMessage) (sql.Expression, error) {
	var w struct {
		Value   json.RawMessage `json:"value"`
		Pattern string          `json:"pattern"`
		Metric  string          `json:"metric"`
		Bound   float64         `json:"bound"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("fuzzy_string_filter", err.Error())
	}
	child, err := Decode(w.Value)
	if err != nil {
		return nil, err
	}
	return expression.NewFuzzyStringFilter(child, w.Pattern, w.Metric, w.Bound), nil
}

// --- conditional ---

func decodeConditional(raw json.RawMessage) (sql.Expression, error) {
	var w struct {
		Conditions []struct {
			When json.RawMessage `json:"when"`
			Then json.RawMessage `json:"then"`
		} `json:"conditions"`
		Otherwise json.RawMessage `json:"otherwise"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("when_then_otherwise", err.Error())
	}
	branches := make([]expression.WhenThen, len(w.Conditions))
	for i, c := range w.Conditions {
		when, err := Decode(c.When)
		if err != nil {
			return nil, err
		}
		then, err := Decode(c.Then)
		if err != nil {
			return nil, err
		}
		branches[i] = expression.WhenThen{When: when, Then: then}
	}
	otherwise, err := Decode(w.Otherwise)
	if err != nil {
		return nil, err
	}
	return expression.NewConditional(branches, otherwise)
}

// --- window functions ---

func decodeExprList(tag string, raws []json.RawMessage) ([]sql.Expression, error) {
	out := make([]sql.Expression, len(raws))
	for i, r := range raws {
		e, err := Decode(r)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", tag, i, err)
		}
		out[i] = e
	}
	return out, nil
}

func decodeRank(raw json.RawMessage) (sql.Expression, error) {
	var w struct {
		OrderBy     []json.RawMessage `json:"orderBy"`
		PartitionBy []json.RawMessage `json:"partitionBy"`
		Descending  bool              `json:"descending"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("rank", err.Error())
	}
	orderBy, err := decodeExprList("rank.orderBy", w.OrderBy)
	if err != nil {
		return nil, err
	}
	partitionBy, err := decodeExprList("rank.partitionBy", w.PartitionBy)
	if err != nil {
		return nil, err
	}
	return expression.NewRank(orderBy, partitionBy, w.Descending)
}

func decodeCumsum(raw json.RawMessage) (sql.Expression, error) {
	var w struct {
		Value             json.RawMessage   `json:"value"`
		AdditionalOrderBy []json.RawMessage `json:"additionalOrderBy"`
		PartitionBy       []json.RawMessage `json:"partitionBy"`
		Descending        bool              `json:"descending"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, ErrMalformed.New("cumsum", err.Error())
	}
	value, err := Decode(w.Value)
	if err != nil {
		return nil, err
	}
	additionalOrderBy, err := decodeExprList("cumsum.additionalOrderBy", w.AdditionalOrderBy)
	if err != nil {
		return nil, err
	}
	partitionBy, err := decodeExprList("cumsum.partitionBy", w.PartitionBy)
	if err != nil {
		return nil, err
	}
	return expression.NewCumsum(value, additionalOrderBy, partitionBy, w.Descending), nil
}
