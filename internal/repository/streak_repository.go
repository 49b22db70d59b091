package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/daily-stamp/internal/model"
)

// StreakRepo reads and writes the one-per-user `streaks` row.
type StreakRepo struct{ DB *sql.DB }

func NewStreakRepo(db *sql.DB) *StreakRepo { return &StreakRepo{DB: db} }

// Get returns the user's streak.  ok is false when no row exists yet,
// which is a normal state for users who never stamped.
func (r *StreakRepo) Get(ctx context.Context, userID uint64) (s model.Streak, ok bool, err error) {
	return scanStreak(r.DB.QueryRowContext(ctx,
		"SELECT user_id, streak_count, last_stamp FROM streaks WHERE user_id=? LIMIT 1", userID))
}

// GetByUsername is Get keyed by username, used by the calendar header.
func (r *StreakRepo) GetByUsername(ctx context.Context, username string) (model.Streak, bool, error) {
	return scanStreak(r.DB.QueryRowContext(ctx,
		`SELECT s.user_id, s.streak_count, s.last_stamp
		   FROM streaks s JOIN users u ON u.id = s.user_id
		  WHERE u.username=? LIMIT 1`, username))
}

// Create inserts the first streak row for a user with a count of 1.
func (r *StreakRepo) Create(ctx context.Context, userID uint64, at time.Time) (model.Streak, error) {
	at = at.UTC().Truncate(time.Millisecond)
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO streaks (user_id, streak_count, last_stamp) VALUES (?,?,?)",
		userID, 1, at.UnixMilli())
	if err != nil {
		if isDuplicate(err) {
			return model.Streak{}, ErrStreakExists
		}
		return model.Streak{}, err
	}
	return model.Streak{UserID: userID, Count: 1, LastStamp: at}, nil
}

// Update sets the streak count and last stamp time for a user.
func (r *StreakRepo) Update(ctx context.Context, userID uint64, count int, at time.Time) error {
	at = at.UTC().Truncate(time.Millisecond)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE streaks SET streak_count=?, last_stamp=? WHERE user_id=?",
		count, at.UnixMilli(), userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStreakNotFound
	}
	return nil
}

func scanStreak(row *sql.Row) (model.Streak, bool, error) {
	var (
		s  model.Streak
		ms int64
	)
	if err := row.Scan(&s.UserID, &s.Count, &ms); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Streak{}, false, nil
		}
		return model.Streak{}, false, err
	}
	s.LastStamp = time.UnixMilli(ms).UTC()
	return s, true, nil
}
