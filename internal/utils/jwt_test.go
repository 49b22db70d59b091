package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlockTokenRoundTrip(t *testing.T) {
	tok, err := NewUnlockToken("secret", "alice", 10, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)

	sub, err := ParseUnlockToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestUnlockTokenWrongSecret(t *testing.T) {
	tok, err := NewUnlockToken("secret", "alice", 10, time.Now())
	require.NoError(t, err)

	_, err = ParseUnlockToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUnlockTokenExpired(t *testing.T) {
	tok, err := NewUnlockToken("secret", "alice", 10, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ParseUnlockToken("secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUnlockTokenRequiresScope(t *testing.T) {
	claims := jwt.MapClaims{"sub": "alice", "exp": time.Now().Add(time.Hour).Unix()}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseUnlockToken("secret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
