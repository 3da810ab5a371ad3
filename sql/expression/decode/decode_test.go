package decode_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/sql/expression"
	"github.com/milaboratory/ptabler/sql/expression/decode"
	"github.com/milaboratory/ptabler/value"
)

func mustDecode(t *testing.T, raw string) sql.Expression {
	t.Helper()
	e, err := decode.Decode(json.RawMessage(raw))
	require.NoError(t, err)
	return e
}

func TestDecodeComparisonAndArithmetic(t *testing.T) {
	e := mustDecode(t, `{"type":"gt","lhs":{"type":"col","name":"a"},"rhs":{"type":"const","value":3}}`)
	require.IsType(t, &expression.Comparison{}, e)

	plus := mustDecode(t, `{"type":"plus","lhs":{"type":"col","name":"a"},"rhs":{"type":"const","value":1.5}}`)
	require.IsType(t, &expression.Arithmetic{}, plus)
}

func TestDecodeMinusDisambiguatesByShape(t *testing.T) {
	unary := mustDecode(t, `{"type":"minus","value":{"type":"col","name":"a"}}`)
	require.IsType(t, &expression.UnaryArithmetic{}, unary)

	binary := mustDecode(t, `{"type":"minus","lhs":{"type":"col","name":"a"},"rhs":{"type":"col","name":"b"}}`)
	require.IsType(t, &expression.Arithmetic{}, binary)
}

func TestDecodeAndOr(t *testing.T) {
	and := mustDecode(t, `{"type":"and","operands":[{"type":"const","value":true},{"type":"const","value":false}]}`)
	require.IsType(t, &expression.And{}, and)

	or := mustDecode(t, `{"type":"or","operands":[{"type":"const","value":true}]}`)
	require.IsType(t, &expression.Or{}, or)
}

func TestDecodeConstInfersLiteralType(t *testing.T) {
	v, err := decode.Decode(json.RawMessage(`{"type":"const","value":3}`))
	require.NoError(t, err)
	lit, ok := v.(*expression.Literal)
	require.True(t, ok)
	assert.Equal(t, value.Long, lit.Type())
	out, err := lit.Eval(sql.NewEmptyContext(), sql.NewRow())
	require.NoError(t, err)
	assert.EqualValues(t, 3, out)
}

func TestDecodeColProducesUnresolvedRef(t *testing.T) {
	v := mustDecode(t, `{"type":"col","name":"foo"}`)
	ref, ok := v.(*expression.ColumnRef)
	require.True(t, ok)
	assert.Equal(t, "foo", ref.Name)
}

func TestDecodeRankAndCumsum(t *testing.T) {
	rank := mustDecode(t, `{"type":"rank","orderBy":[{"type":"col","name":"a"}],"partitionBy":[],"descending":true}`)
	require.IsType(t, &expression.Rank{}, rank)

	cumsum := mustDecode(t, `{"type":"cumsum","value":{"type":"col","name":"a"},"additionalOrderBy":[],"partitionBy":[],"descending":false}`)
	require.IsType(t, &expression.Cumsum{}, cumsum)
}

func TestDecodeWhenThenOtherwise(t *testing.T) {
	v := mustDecode(t, `{
		"type":"when_then_otherwise",
		"conditions":[{"when":{"type":"const","value":true},"then":{"type":"const","value":"yes"}}],
		"otherwise":{"type":"const","value":"no"}
	}`)
	require.IsType(t, &expression.Conditional{}, v)
}

func TestDecodeUnknownTagFails(t *testing.T) {
	_, err := decode.Decode(json.RawMessage(`{"type":"nonexistent"}`))
	require.Error(t, err)
	assert.True(t, decode.ErrUnknownTag.Is(err))
}

func TestDecodeMalformedFails(t *testing.T) {
	_, err := decode.Decode(json.RawMessage(`{"type":"gt","lhs":null,"rhs":null}`))
	assert.Error(t, err)
}

func TestDecodeHashAndStringDistance(t *testing.T) {
	hash := mustDecode(t, `{"type":"hash","value":{"type":"col","name":"a"},"hashType":"sha256","encoding":"hex"}`)
	require.IsType(t, &expression.Hash{}, hash)

	dist := mustDecode(t, `{"type":"string_distance","string1":{"type":"col","name":"a"},"string2":{"type":"col","name":"b"},"metric":"levenshtein","returnSimilarity":false}`)
	require.IsType(t, &expression.StringDistance{}, dist)
}
