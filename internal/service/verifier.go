package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/daily-stamp/internal/model"
	"github.com/iliyamo/daily-stamp/internal/repository"
	"github.com/iliyamo/daily-stamp/internal/utils"
)

// UserFinder looks a user up by username.  Implementations return
// repository.ErrUserNotFound when no row matches.
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// UserVerifier checks a username/PIN pair.
type UserVerifier struct {
	Users   UserFinder
	Timeout time.Duration
}

func NewUserVerifier(users UserFinder, timeout time.Duration) *UserVerifier {
	return &UserVerifier{Users: users, Timeout: timeout}
}

var (
	dummyOnce sync.Once
	dummy     string
)

// dummyHash is compared against when the username is unknown so both
// failure paths pay one bcrypt comparison.  The cost matches the default
// BCRYPT_COST.
func dummyHash() string {
	dummyOnce.Do(func() {
		dummy, _ = utils.HashPIN("not-a-pin", bcrypt.DefaultCost)
	})
	return dummy
}

// VerifyUser returns the user when pin matches the stored hash.  The
// username is trimmed as on registration.  Unknown usernames and wrong
// PINs both fail with ErrInvalidCredentials; any other lookup failure is a
// *PersistenceError.
func (v *UserVerifier) VerifyUser(ctx context.Context, username, pin string) (model.User, error) {
	ctx, cancel := withTimeout(ctx, v.Timeout)
	defer cancel()

	u, err := v.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrUserNotFound) {
		utils.VerifyPIN(dummyHash(), pin)
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, persistence("lookup user", err)
	}
	if !utils.VerifyPIN(u.PinHash, pin) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
