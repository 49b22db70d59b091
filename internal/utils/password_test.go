package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPINRoundTrip(t *testing.T) {
	hash, err := HashPIN("1234", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPIN(hash, "1234"))
	assert.False(t, VerifyPIN(hash, "4321"))
	assert.False(t, VerifyPIN(hash, ""))
}

func TestHashPINIsSalted(t *testing.T) {
	a, err := HashPIN("1234", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPIN("1234", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, VerifyPIN(a, "1234"))
	assert.True(t, VerifyPIN(b, "1234"))
}

func TestVerifyPINRejectsMalformedHash(t *testing.T) {
	assert.False(t, VerifyPIN("not-a-bcrypt-hash", "1234"))
}
