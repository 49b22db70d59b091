package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/daily-stamp/internal/model"
	"github.com/iliyamo/daily-stamp/internal/repository"
)

// StampLister reads stamp history by username.
type StampLister interface {
	ListByUsername(ctx context.Context, username string, authorized bool) ([]model.StampView, error)
}

// StreakFinder reads a streak by username.
type StreakFinder interface {
	GetByUsername(ctx context.Context, username string) (model.Streak, bool, error)
}

// HistoryService serves the calendar: stamp history and the current streak.
type HistoryService struct {
	Stamps  StampLister
	Streaks StreakFinder
	Timeout time.Duration
}

// History returns the user's stamps newest first.  Mood and note are only
// present when authorized is true.  Unknown users fail with
// ErrUserNotFound; a user without stamps gets an empty slice.
func (h *HistoryService) History(ctx context.Context, username string, authorized bool) ([]model.StampView, error) {
	ctx, cancel := withTimeout(ctx, h.Timeout)
	defer cancel()

	out, err := h.Stamps.ListByUsername(ctx, username, authorized)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, persistence("list stamps", err)
	}
	if !authorized {
		// Redaction holds regardless of what the store returned.
		for i := range out {
			out[i].Mood, out[i].Note = nil, nil
		}
	}
	return out, nil
}

// Streak returns the user's current streak.  ok is false when the user has
// never stamped or does not exist.
func (h *HistoryService) Streak(ctx context.Context, username string) (s model.Streak, ok bool, err error) {
	ctx, cancel := withTimeout(ctx, h.Timeout)
	defer cancel()

	s, ok, err = h.Streaks.GetByUsername(ctx, username)
	if err != nil {
		return model.Streak{}, false, persistence("read streak", err)
	}
	return s, ok, nil
}
