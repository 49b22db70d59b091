package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/daily-stamp/internal/model"
	"github.com/iliyamo/daily-stamp/internal/repository"
)

// leakyLister ignores the authorized flag and always returns full detail.
type leakyLister struct {
	views []model.StampView
	err   error
}

func (l *leakyLister) ListByUsername(context.Context, string, bool) ([]model.StampView, error) {
	out := make([]model.StampView, len(l.views))
	copy(out, l.views)
	return out, l.err
}

type streakByName struct {
	s   model.Streak
	ok  bool
	err error
}

func (f streakByName) GetByUsername(context.Context, string) (model.Streak, bool, error) {
	return f.s, f.ok, f.err
}

func TestHistoryPublicViewIsRedacted(t *testing.T) {
	happy := model.MoodHappy
	note := "ran 5k"
	lister := &leakyLister{views: []model.StampView{{Date: now, Mood: &happy, Note: &note}}}
	h := &HistoryService{Stamps: lister, Streaks: streakByName{}, Timeout: time.Second}

	public, err := h.History(context.Background(), "alice", false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Nil(t, public[0].Mood)
	assert.Nil(t, public[0].Note)

	full, err := h.History(context.Background(), "alice", true)
	require.NoError(t, err)
	assert.Equal(t, &happy, full[0].Mood)
	assert.Equal(t, &note, full[0].Note)
}

func TestHistoryErrors(t *testing.T) {
	h := &HistoryService{Stamps: &leakyLister{err: repository.ErrUserNotFound}, Streaks: streakByName{}}
	_, err := h.History(context.Background(), "ghost", false)
	assert.ErrorIs(t, err, ErrUserNotFound)

	h.Stamps = &leakyLister{err: errBoom}
	_, err = h.History(context.Background(), "alice", false)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "list stamps", pe.Op)
}

func TestStreakByUsername(t *testing.T) {
	want := model.Streak{UserID: 1, Count: 5, LastStamp: now}
	h := &HistoryService{Streaks: streakByName{s: want, ok: true}}

	got, ok, err := h.Streak(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	h.Streaks = streakByName{err: errBoom}
	_, _, err = h.Streak(context.Background(), "alice")
	assert.ErrorIs(t, err, errBoom)
}
