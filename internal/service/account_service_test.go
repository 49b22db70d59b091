package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/daily-stamp/internal/utils"
)

func newAccounts(users *fakeUsers) *AccountService {
	return &AccountService{
		Users:        users,
		Verifier:     NewUserVerifier(users, time.Second),
		BcryptCost:   bcrypt.MinCost,
		JWTSecret:    "secret",
		UnlockTTLMin: 5,
		Timeout:      time.Second,
		Now:          func() time.Time { return time.Now() },
	}
}

func TestRegisterHashesPIN(t *testing.T) {
	users := newFakeUsers()
	u, err := newAccounts(users).Register(context.Background(), "  alice ", "1234")
	require.NoError(t, err)

	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "1234", u.PinHash)
	assert.True(t, utils.VerifyPIN(u.PinHash, "1234"))
}

func TestRegisterDuplicate(t *testing.T) {
	users := newFakeUsers()
	a := newAccounts(users)
	_, err := a.Register(context.Background(), "alice", "1234")
	require.NoError(t, err)

	_, err = a.Register(context.Background(), "alice", "5678")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterValidation(t *testing.T) {
	a := newAccounts(newFakeUsers())
	for name, in := range map[string][2]string{
		"blank username": {"  ", "1234"},
		"long username":  {strings.Repeat("x", MaxUsernameLength+1), "1234"},
		"short pin":      {"alice", "123"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := a.Register(context.Background(), in[0], in[1])
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRegisterStoreFailure(t *testing.T) {
	users := newFakeUsers()
	users.err = errBoom
	_, err := newAccounts(users).Register(context.Background(), "alice", "1234")

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "create user", pe.Op)
}

func TestUnlockIssuesTokenForUsername(t *testing.T) {
	users := newFakeUsers()
	users.add(t, "alice", "1234")

	tok, err := newAccounts(users).Unlock(context.Background(), "alice", "1234")
	require.NoError(t, err)

	sub, err := utils.ParseUnlockToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestUnlockRejectsBadPIN(t *testing.T) {
	users := newFakeUsers()
	users.add(t, "alice", "1234")
	a := newAccounts(users)

	_, err := a.Unlock(context.Background(), "alice", "0000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Unlock(context.Background(), "nobody", "1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyUserErrorsAreIndistinguishable(t *testing.T) {
	users := newFakeUsers()
	users.add(t, "alice", "1234")
	v := NewUserVerifier(users, time.Second)

	_, wrongPIN := v.VerifyUser(context.Background(), "alice", "0000")
	_, unknown := v.VerifyUser(context.Background(), "bob", "1234")
	assert.Equal(t, wrongPIN, unknown)
	assert.Equal(t, wrongPIN.Error(), unknown.Error())
}

func TestVerifyUserTrimsUsername(t *testing.T) {
	users := newFakeUsers()
	alice := users.add(t, "alice", "1234")
	v := NewUserVerifier(users, time.Second)

	u, err := v.VerifyUser(context.Background(), "  alice\t", "1234")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
}

func TestUnknownUserStillComparesAgainstAHash(t *testing.T) {
	cost, err := bcrypt.Cost([]byte(dummyHash()))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
	assert.False(t, utils.VerifyPIN(dummyHash(), "1234"))
}
