package expression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milaboratory/ptabler/sql/expression"
	"github.com/milaboratory/ptabler/value"
)

func strLit(s string) *expression.Literal { return expression.NewLiteral(s, value.String) }

func TestStringDistanceLevenshteinAsDistance(t *testing.T) {
	d := expression.NewStringDistance(strLit("kitten"), strLit("sitting"), "levenshtein", false)
	v, err := d.Eval(ctx(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestStringDistanceJaroWinklerAsSimilarity(t *testing.T) {
	d := expression.NewStringDistance(strLit("martha"), strLit("marhta"), "jaro_winkler", true)
	v, err := d.Eval(ctx(), nil)
	require.NoError(t, err)
	sim := v.(float64)
	assert.Greater(t, sim, 0.9)
}

func TestStringDistanceConvertsSimilarityToDistance(t *testing.T) {
	d := expression.NewStringDistance(strLit("abc"), strLit("abc"), "jaro", false)
	v, err := d.Eval(ctx(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, v.(float64), 1e-9)
}

func TestStringDistanceNullPropagates(t *testing.T) {
	d := expression.NewStringDistance(expression.NewLiteral(nil, value.String), strLit("abc"), "levenshtein", false)
	v, err := d.Eval(ctx(), nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestFuzzyStringFilterWithinBound(t *testing.T) {
	f := expression.NewFuzzyStringFilter(strLit("kitten"), "sitten", "levenshtein", 1)
	v, err := f.Eval(ctx(), nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestFuzzyStringFilterOutsideBound(t *testing.T) {
	f := expression.NewFuzzyStringFilter(strLit("kitten"), "sitting", "levenshtein", 1)
	v, err := f.Eval(ctx(), nil)
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestFuzzyStringFilterNullChildPropagates(t *testing.T) {
	f := expression.NewFuzzyStringFilter(expression.NewLiteral(nil, value.String), "x", "levenshtein", 1)
	v, err := f.Eval(ctx(), nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}
