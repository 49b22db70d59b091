package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/daily-stamp/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with an already hashed PIN and returns the row.
func (r *UserRepo) Create(ctx context.Context, username, pinHash string, at time.Time) (model.User, error) {
	at = at.UTC().Truncate(time.Millisecond)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, pin_hash, created_at) VALUES (?,?,?)",
		username, pinHash, at.UnixMilli())
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrUsernameTaken
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{ID: uint64(id), Username: username, PinHash: pinHash, CreatedAt: at}, nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,username,pin_hash,created_at FROM users WHERE username=? LIMIT 1", username))
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u  model.User
		ms int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PinHash, &ms); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	u.CreatedAt = time.UnixMilli(ms).UTC()
	return u, nil
}
