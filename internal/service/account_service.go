package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/daily-stamp/internal/model"
	"github.com/iliyamo/daily-stamp/internal/repository"
	"github.com/iliyamo/daily-stamp/internal/utils"
)

const (
	MinPINLength      = 4
	MaxUsernameLength = 64
)

// UserCreator inserts users.  Implementations return
// repository.ErrUsernameTaken on a duplicate username.
type UserCreator interface {
	Create(ctx context.Context, username, pinHash string, at time.Time) (model.User, error)
}

// AccountService registers users and issues unlock tokens for the
// authorized history view.
type AccountService struct {
	Users        UserCreator
	Verifier     *UserVerifier
	BcryptCost   int
	JWTSecret    string
	UnlockTTLMin int
	Timeout      time.Duration
	Now          func() time.Time
}

// Register validates the input, hashes the PIN and creates the user.
func (a *AccountService) Register(ctx context.Context, username, pin string) (model.User, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return model.User{}, invalidInput("username is required")
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		return model.User{}, invalidInput("username is too long")
	case len(pin) < MinPINLength:
		return model.User{}, invalidInput("PIN must be at least 4 characters")
	}

	hash, err := utils.HashPIN(pin, a.BcryptCost)
	if err != nil {
		return model.User{}, err
	}

	ctx, cancel := withTimeout(ctx, a.Timeout)
	defer cancel()
	u, err := a.Users.Create(ctx, username, hash, a.now())
	if errors.Is(err, repository.ErrUsernameTaken) {
		return model.User{}, ErrUsernameTaken
	}
	if err != nil {
		return model.User{}, persistence("create user", err)
	}
	return u, nil
}

// Unlock verifies the PIN and returns a token granting the authorized
// history view for username.
func (a *AccountService) Unlock(ctx context.Context, username, pin string) (utils.AccessToken, error) {
	u, err := a.Verifier.VerifyUser(ctx, username, pin)
	if err != nil {
		return utils.AccessToken{}, err
	}
	return utils.NewUnlockToken(a.JWTSecret, u.Username, a.UnlockTTLMin, a.now())
}

func (a *AccountService) now() time.Time {
	if a.Now == nil {
		return time.Now().UTC()
	}
	return a.Now().UTC()
}
