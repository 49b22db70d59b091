package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/daily-stamp/internal/model"
)

// StampRepo appends to and reads the `stamps` table.
type StampRepo struct{ DB *sql.DB }

func NewStampRepo(db *sql.DB) *StampRepo { return &StampRepo{DB: db} }

// Insert appends a stamp.  CreatedAt must be the caller's captured time so
// it matches the streak's last_stamp exactly.
func (r *StampRepo) Insert(ctx context.Context, s model.Stamp) (uint64, error) {
	var mood, note sql.NullString
	if s.Mood != nil {
		mood = sql.NullString{String: string(*s.Mood), Valid: true}
	}
	if s.Note != nil {
		note = sql.NullString{String: *s.Note, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO stamps (user_id, mood, notes, created_at) VALUES (?,?,?,?)",
		s.UserID, mood, note, s.CreatedAt.UTC().UnixMilli())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUsername returns the user's stamps newest first.  When authorized
// is false mood and notes are never selected, so every item carries only
// its date.  An unknown username yields ErrUserNotFound; a known user with
// no stamps yields an empty, non-nil slice.
func (r *StampRepo) ListByUsername(ctx context.Context, username string, authorized bool) ([]model.StampView, error) {
	var userID uint64
	err := r.DB.QueryRowContext(ctx, "SELECT id FROM users WHERE username=? LIMIT 1", username).Scan(&userID)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	query := "SELECT created_at FROM stamps WHERE user_id=? ORDER BY created_at DESC, id DESC"
	if authorized {
		query = "SELECT created_at, mood, notes FROM stamps WHERE user_id=? ORDER BY created_at DESC, id DESC"
	}
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.StampView, 0)
	for rows.Next() {
		var (
			ms         int64
			mood, note sql.NullString
		)
		if authorized {
			err = rows.Scan(&ms, &mood, &note)
		} else {
			err = rows.Scan(&ms)
		}
		if err != nil {
			return nil, err
		}
		v := model.StampView{Date: time.UnixMilli(ms).UTC()}
		if mood.Valid {
			m := model.Mood(mood.String)
			v.Mood = &m
		}
		if note.Valid {
			n := note.String
			v.Note = &n
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
