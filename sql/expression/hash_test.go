package expression_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milaboratory/ptabler/sql/expression"
)

func TestHashSHA256Hex(t *testing.T) {
	h, err := expression.NewHash(strLit("hello"), "sha256", "hex")
	require.NoError(t, err)
	v, err := h.Eval(ctx(), nil)
	require.NoError(t, err)

	want := sha256.Sum256([]byte("hello"))
	assert.Equal(t, hex.EncodeToString(want[:]), v)
}

func TestHashSHA256Base64(t *testing.T) {
	h, err := expression.NewHash(strLit("hello"), "sha256", "base64")
	require.NoError(t, err)
	v, err := h.Eval(ctx(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, v)
}

func TestHashNonCryptographicRejectsBase64AtConstruction(t *testing.T) {
	_, err := expression.NewHash(strLit("hello"), "xxh3", "base64")
	require.Error(t, err)
}

func TestHashUnknownTypeRejectedAtConstruction(t *testing.T) {
	_, err := expression.NewHash(strLit("hello"), "sha1", "hex")
	require.Error(t, err)
}

func TestHashXXH3IsDeterministicHex(t *testing.T) {
	h, err := expression.NewHash(strLit("hello"), "xxh3", "hex")
	require.NoError(t, err)
	v1, err := h.Eval(ctx(), nil)
	require.NoError(t, err)
	v2, err := h.Eval(ctx(), nil)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.NotEmpty(t, v1)
}

func TestHashNullChildPropagates(t *testing.T) {
	h, err := expression.NewHash(expression.NewLiteral(nil, strLit("").Type()), "sha256", "hex")
	require.NoError(t, err)
	v, err := h.Eval(ctx(), nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}
