package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	cases := map[string]Type{
		"int":    Int,
		"long":   Long,
		"float":  Float,
		"double": Double,
		"string": String,
		"bool":   Bool,
	}
	for name, want := range cases {
		got, err := ParseType(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}
}

func TestParseTypeUnknown(t *testing.T) {
	_, err := ParseType("decimal")
	require.Error(t, err)
	assert.True(t, ErrUnknownType.Is(err))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, Int.IsNumeric())
	assert.True(t, Long.IsNumeric())
	assert.True(t, Float.IsNumeric())
	assert.True(t, Double.IsNumeric())
	assert.False(t, String.IsNumeric())
	assert.False(t, Bool.IsNumeric())
}

func TestCoerceNilPassesThrough(t *testing.T) {
	v, err := Coerce(nil, String)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCoerceNumericWidening(t *testing.T) {
	i, err := Coerce("42", Long)
	require.NoError(t, err)
	assert.Equal(t, int64(42), i)

	f, err := Coerce(3, Double)
	require.NoError(t, err)
	assert.Equal(t, float64(3), f)

	s, err := Coerce(7, String)
	require.NoError(t, err)
	assert.Equal(t, "7", s)

	b, err := Coerce("true", Bool)
	require.NoError(t, err)
	assert.Equal(t, true, b)
}

func TestCoerceUnparsable(t *testing.T) {
	_, err := Coerce("not-a-number", Long)
	assert.Error(t, err)
}

func TestAsFloat64(t *testing.T) {
	f, ok, err := AsFloat64(float32(2.5))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	_, ok, err = AsFloat64(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAsStringAndAsBool(t *testing.T) {
	s, ok, err := AsString(10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "10", s)

	b, ok, err := AsBool(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, b)

	_, ok, err = AsBool(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
