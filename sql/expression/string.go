package expression

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// StrJoin implements `str_join`: concatenate the string form of every
// operand with an optional delimiter (default empty, per §3).
type StrJoin struct {
	Operands  []sql.Expression
	Delimiter string
}

func NewStrJoin(delimiter string, operands ...sql.Expression) *StrJoin {
	return &StrJoin{Operands: operands, Delimiter: delimiter}
}

func (s *StrJoin) Type() value.Type           { return value.String }
func (s *StrJoin) Children() []sql.Expression { return s.Operands }
func (s *StrJoin) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &StrJoin{Operands: children, Delimiter: s.Delimiter}, nil
}
func (s *StrJoin) String() string {
	return fmt.Sprintf("str_join(%s, delimiter=%q)", joinStrings(s.Operands), s.Delimiter)
}

func (s *StrJoin) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	parts := make([]string, 0, len(s.Operands))
	for _, op := range s.Operands {
		v, err := op.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		str, ok, err := value.AsString(v)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New("str_join", err.Error())
		}
		if !ok {
			continue
		}
		parts = append(parts, str)
	}
	return strings.Join(parts, s.Delimiter), nil
}

// stringUnary shares a body for to_upper, to_lower and str_len, the three
// unary string transforms that take no parameters beyond `value`.
type stringUnary struct {
	Op    string
	Child sql.Expression
}

func NewToUpper(child sql.Expression) *stringUnary { return &stringUnary{Op: "to_upper", Child: child} }
func NewToLower(child sql.Expression) *stringUnary { return &stringUnary{Op: "to_lower", Child: child} }
func NewStrLen(child sql.Expression) *stringUnary  { return &stringUnary{Op: "str_len", Child: child} }

func (s *stringUnary) Type() value.Type {
	if s.Op == "str_len" {
		return value.Long
	}
	return value.String
}
func (s *stringUnary) Children() []sql.Expression { return []sql.Expression{s.Child} }
func (s *stringUnary) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrWrongChildCount.New(s.Op, 1, len(children))
	}
	return &stringUnary{Op: s.Op, Child: children[0]}, nil
}
func (s *stringUnary) String() string { return fmt.Sprintf("%s(%s)", s.Op, s.Child) }

func (s *stringUnary) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := s.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	str, ok, err := value.AsString(v)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New(s.Op, err.Error())
	}
	if !ok {
		return nil, nil
	}
	switch s.Op {
	case "to_upper":
		return strings.ToUpper(str), nil
	case "to_lower":
		return strings.ToLower(str), nil
	case "str_len":
		return int64(utf8.RuneCountInString(str)), nil
	default:
		return nil, sql.ErrInvalidExpression.New("string", "unknown operator "+s.Op)
	}
}

// Substring implements `substring`. Exactly one of Length/End may be set;
// End < Start is a structural error at construction/resolve time (§3, §4.1).
type Substring struct {
	Child      sql.Expression
	Start      int
	Length     *int
	End        *int
}

// NewSubstring validates the length/end mutual exclusivity invariant and
// constructs the expression.
func NewSubstring(child sql.Expression, start int, length, end *int) (*Substring, error) {
	if length != nil && end != nil {
		return nil, sql.ErrInvalidExpression.New("substring", "both 'length' and 'end' set")
	}
	if length != nil && *length < 0 {
		return nil, sql.ErrInvalidExpression.New("substring", "'length' cannot be negative")
	}
	if end != nil && *end < start {
		return nil, sql.ErrInvalidExpression.New("substring", fmt.Sprintf("'end' (%d) cannot be less than 'start' (%d)", *end, start))
	}
	return &Substring{Child: child, Start: start, Length: length, End: end}, nil
}

func (s *Substring) Type() value.Type           { return value.String }
func (s *Substring) Children() []sql.Expression { return []sql.Expression{s.Child} }
func (s *Substring) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrWrongChildCount.New("substring", 1, len(children))
	}
	return &Substring{Child: children[0], Start: s.Start, Length: s.Length, End: s.End}, nil
}
func (s *Substring) String() string { return fmt.Sprintf("substring(%s, start=%d)", s.Child, s.Start) }

func (s *Substring) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := s.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	str, ok, err := value.AsString(v)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New("substring", err.Error())
	}
	if !ok {
		return nil, nil
	}

	runes := []rune(str)
	n := len(runes)

	start := s.Start
	if start < 0 {
		// Literal negative start counts from the end of the string, per
		// common engine indexing semantics (§4.1).
		start = n + start
		if start < 0 {
			start = 0
		}
	}
	if start > n {
		start = n
	}

	end := n
	if s.Length != nil {
		end = start + *s.Length
	} else if s.End != nil {
		end = *s.End
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}

	return string(runes[start:end]), nil
}

// StrReplace implements `str_replace`: replace the first or all
// occurrences of pattern (regex or literal) with replacement.
type StrReplace struct {
	Child       sql.Expression
	Pattern     string
	Replacement string
	ReplaceAll  bool
	Literal     bool
}

func NewStrReplace(child sql.Expression, pattern, replacement string, replaceAll, literal bool) *StrReplace {
	return &StrReplace{Child: child, Pattern: pattern, Replacement: replacement, ReplaceAll: replaceAll, Literal: literal}
}

func (s *StrReplace) Type() value.Type           { return value.String }
func (s *StrReplace) Children() []sql.Expression { return []sql.Expression{s.Child} }
func (s *StrReplace) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrWrongChildCount.New("str_replace", 1, len(children))
	}
	return &StrReplace{Child: children[0], Pattern: s.Pattern, Replacement: s.Replacement, ReplaceAll: s.ReplaceAll, Literal: s.Literal}, nil
}
func (s *StrReplace) String() string {
	return fmt.Sprintf("str_replace(%s, %q, %q)", s.Child, s.Pattern, s.Replacement)
}

func (s *StrReplace) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := s.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	str, ok, err := value.AsString(v)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New("str_replace", err.Error())
	}
	if !ok {
		return nil, nil
	}

	if s.Literal {
		if s.ReplaceAll {
			return strings.ReplaceAll(str, s.Pattern, s.Replacement), nil
		}
		return strings.Replace(str, s.Pattern, s.Replacement, 1), nil
	}

	re, err := regexp.Compile(s.Pattern)
	if err != nil {
		return nil, sql.ErrInvalidExpression.New("str_replace", "invalid pattern: "+err.Error())
	}
	if s.ReplaceAll {
		return re.ReplaceAllString(str, s.Replacement), nil
	}
	replaced := false
	return re.ReplaceAllStringFunc(str, func(match string) string {
		if replaced {
			return match
		}
		replaced = true
		return re.ReplaceAllString(match, s.Replacement)
	}), nil
}
