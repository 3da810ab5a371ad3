package expression

import (
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// jaroWinklerBoostThreshold and jaroWinklerPrefixSize are the standard
// Jaro-Winkler tuning constants used by smetrics.JaroWinkler.
const (
	jaroWinklerBoostThreshold = 0.7
	jaroWinklerPrefixSize     = 4
)

// similarityMetrics measures whose native scale is similarity (higher is
// closer) rather than edit distance (lower is closer); these must be
// converted to distance form before a bound comparison (§4.1).
var similarityMetrics = map[string]bool{
	"jaro_winkler": true,
	"jaro":         true,
}

// metricValue computes the raw (s1, s2) metric for the named fuzzy-string
// metric, reporting whether its native scale is a similarity in [0, 1].
func metricValue(s1, s2, metric string) (val float64, isSimilarity bool, err error) {
	switch metric {
	case "levenshtein":
		return float64(levenshtein.ComputeDistance(s1, s2)), false, nil
	case "jaro":
		return smetrics.Jaro(s1, s2), true, nil
	case "jaro_winkler":
		return smetrics.JaroWinkler(s1, s2, jaroWinklerBoostThreshold, jaroWinklerPrefixSize), true, nil
	case "hamming":
		d, err := smetrics.Hamming(s1, s2)
		if err != nil {
			return 0, false, err
		}
		return float64(d), false, nil
	default:
		return 0, false, sql.ErrInvalidExpression.New("string_distance", "unknown metric "+metric)
	}
}

// asDistance normalizes a metric's raw value to distance form (lower is
// closer), converting a similarity score via 1 - similarity.
func asDistance(val float64, isSimilarity bool) float64 {
	if isSimilarity {
		return 1 - val
	}
	return val
}

// StringDistance implements `string_distance`.
type StringDistance struct {
	Left, Right      sql.Expression
	Metric           string
	ReturnSimilarity bool
}

func NewStringDistance(left, right sql.Expression, metric string, returnSimilarity bool) *StringDistance {
	return &StringDistance{Left: left, Right: right, Metric: metric, ReturnSimilarity: returnSimilarity}
}

func (s *StringDistance) Type() value.Type           { return value.Double }
func (s *StringDistance) Children() []sql.Expression { return []sql.Expression{s.Left, s.Right} }
func (s *StringDistance) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrWrongChildCount.New("string_distance", 2, len(children))
	}
	return &StringDistance{Left: children[0], Right: children[1], Metric: s.Metric, ReturnSimilarity: s.ReturnSimilarity}, nil
}
func (s *StringDistance) String() string {
	return fmt.Sprintf("string_distance(%s, %s, %s)", s.Left, s.Right, s.Metric)
}

func (s *StringDistance) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	s1, s2, ok, err := evalStringPair(ctx, row, s.Left, s.Right)
	if err != nil || !ok {
		return nil, err
	}
	val, isSimilarity, err := metricValue(s1, s2, s.Metric)
	if err != nil {
		return nil, err
	}
	if s.ReturnSimilarity == isSimilarity {
		return val, nil
	}
	if s.ReturnSimilarity {
		// asked for similarity but the metric is natively a distance:
		// there is no universal inverse, so report 1/(1+distance).
		return 1 / (1 + val), nil
	}
	return asDistance(val, isSimilarity), nil
}

func evalStringPair(ctx *sql.Context, row sql.Row, left, right sql.Expression) (string, string, bool, error) {
	lv, err := left.Eval(ctx, row)
	if err != nil {
		return "", "", false, err
	}
	rv, err := right.Eval(ctx, row)
	if err != nil {
		return "", "", false, err
	}
	if lv == nil || rv == nil {
		return "", "", false, nil
	}
	s1, _, err := value.AsString(lv)
	if err != nil {
		return "", "", false, sql.ErrTypeMismatch.New("string_distance", err.Error())
	}
	s2, _, err := value.AsString(rv)
	if err != nil {
		return "", "", false, sql.ErrTypeMismatch.New("string_distance", err.Error())
	}
	return s1, s2, true, nil
}

// FuzzyStringFilter implements `fuzzy_string_filter`: a boolean predicate,
// true iff distance(value, pattern) <= bound.
type FuzzyStringFilter struct {
	Child   sql.Expression
	Pattern string
	Metric  string
	Bound   float64
}

func NewFuzzyStringFilter(child sql.Expression, pattern, metric string, bound float64) *FuzzyStringFilter {
	return &FuzzyStringFilter{Child: child, Pattern: pattern, Metric: metric, Bound: bound}
}

func (f *FuzzyStringFilter) Type() value.Type           { return value.Bool }
func (f *FuzzyStringFilter) Children() []sql.Expression { return []sql.Expression{f.Child} }
func (f *FuzzyStringFilter) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrWrongChildCount.New("fuzzy_string_filter", 1, len(children))
	}
	return &FuzzyStringFilter{Child: children[0], Pattern: f.Pattern, Metric: f.Metric, Bound: f.Bound}, nil
}
func (f *FuzzyStringFilter) String() string {
	return fmt.Sprintf("fuzzy_string_filter(%s, %q, %s, %v)", f.Child, f.Pattern, f.Metric, f.Bound)
}

func (f *FuzzyStringFilter) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := f.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	str, _, err := value.AsString(v)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New("fuzzy_string_filter", err.Error())
	}
	val, isSimilarity, err := metricValue(str, f.Pattern, f.Metric)
	if err != nil {
		return nil, err
	}
	return asDistance(val, isSimilarity) <= f.Bound, nil
}
