package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensAreOpaqueAndDistinct(t *testing.T) {
	a, err := NewRefreshToken()
	require.NoError(t, err)
	b, err := NewRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	// base64url, no padding: safe to put in a link without escaping
	assert.NotContains(t, a, "=")
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
}

func TestResetTokenShorterThanRefresh(t *testing.T) {
	reset, err := NewResetToken()
	require.NoError(t, err)
	refresh, err := NewRefreshToken()
	require.NoError(t, err)
	assert.Less(t, len(reset), len(refresh))
}
