package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/iliyamo/daily-stamp/internal/model"
	"github.com/iliyamo/daily-stamp/internal/queue"
)

const day = 24 * time.Hour

// notePolicy strips all markup from notes; they are stored as plain text.
var notePolicy = bluemonday.StrictPolicy()

// StreakStore is the subset of the streak repository the workflow needs.
type StreakStore interface {
	Get(ctx context.Context, userID uint64) (model.Streak, bool, error)
	Create(ctx context.Context, userID uint64, at time.Time) (model.Streak, error)
	Update(ctx context.Context, userID uint64, count int, at time.Time) error
}

// StampStore appends stamps.
type StampStore interface {
	Insert(ctx context.Context, s model.Stamp) (uint64, error)
}

// SummaryStore keeps the short-lived post-stamp summary.
type SummaryStore interface {
	Save(ctx context.Context, s model.StampSummary) (string, error)
}

// EventPublisher announces recorded stamps to other services.
type EventPublisher interface {
	PublishStampRecorded(ctx context.Context, ev queue.StampRecordedEvent) error
}

// SubmitInput is a stamp submission as received from the client.  Mood is
// nil when absent; blank Notes are treated as absent.
type SubmitInput struct {
	Username string
	PIN      string
	Notes    string
	Mood     *model.Mood
}

// Outcome is the terminal state of a submission.  It is one of *Stamped,
// AlreadyStamped, InvalidCredentials or *PersistenceError.
type Outcome interface{ isOutcome() }

// Stamped means the stamp was recorded and the streak started or advanced.
// SummaryToken is empty when no summary store is configured or saving the
// summary failed.
type Stamped struct {
	StreakCount  int
	Summary      model.StampSummary
	SummaryToken string
}

// AlreadyStamped means the user stamped less than 24 hours ago.
type AlreadyStamped struct{}

// InvalidCredentials means the username or PIN did not check out.
type InvalidCredentials struct{}

func (*Stamped) isOutcome()          {}
func (AlreadyStamped) isOutcome()     {}
func (InvalidCredentials) isOutcome() {}

// StampService runs the stamp submission workflow.
//
// The streak read and write are two separate statements without a lock or
// version check.  Two concurrent submissions for the same user can both
// read the same streak and both write count+1, and both insert a stamp.
// This lost update is accepted; callers needing stricter behavior must add
// a uniqueness guard on (user_id, day) at the store.
type StampService struct {
	Verifier  *UserVerifier
	Streaks   StreakStore
	Stamps    StampStore
	Summaries SummaryStore   // optional
	Events    EventPublisher // optional
	Log       *zap.Logger
	Timeout   time.Duration
	Now       func() time.Time
}

func NewStampService(v *UserVerifier, streaks StreakStore, stamps StampStore, log *zap.Logger, timeout time.Duration) *StampService {
	return &StampService{
		Verifier: v,
		Streaks:  streaks,
		Stamps:   stamps,
		Log:      log,
		Timeout:  timeout,
		Now:      time.Now,
	}
}

// Submit verifies the user, advances or starts the streak and appends a
// stamp.  Every comparison and write uses the single time captured on
// entry.  The streak is written before the stamp, so a failure between the
// two leaves a streak update without its stamp, never the reverse.
func (s *StampService) Submit(ctx context.Context, in SubmitInput) Outcome {
	now := s.now()

	user, err := s.Verifier.VerifyUser(ctx, in.Username, in.PIN)
	if err != nil {
		var pe *PersistenceError
		if errors.As(err, &pe) {
			return s.fail(pe)
		}
		return InvalidCredentials{}
	}

	cur, found, err := s.getStreak(ctx, user.ID)
	if err != nil {
		return s.fail(persistence("read streak", err))
	}

	next := 1
	if found {
		switch elapsed := ElapsedDays(cur.LastStamp, now); {
		case elapsed == 0:
			return AlreadyStamped{}
		case elapsed == 1:
			next = cur.Count + 1
		}
	}

	if err := s.writeStreak(ctx, user.ID, found, next, now); err != nil {
		return s.fail(persistence("write streak", err))
	}

	stamp := model.Stamp{UserID: user.ID, Mood: in.Mood, Note: CleanNote(in.Notes), CreatedAt: now}
	if err := s.insertStamp(ctx, stamp); err != nil {
		return s.fail(persistence("insert stamp", err))
	}

	out := &Stamped{
		StreakCount: next,
		Summary: model.StampSummary{
			Username:  user.Username,
			Streak:    next,
			Mood:      in.Mood,
			Timestamp: now.UnixMilli(),
		},
	}
	s.afterStamp(ctx, user, stamp, out)
	return out
}

// ElapsedDays is the number of whole 24 hour periods between last and now.
// A last time in the future counts as zero.
func ElapsedDays(last, now time.Time) int {
	d := now.Sub(last)
	if d < 0 {
		return 0
	}
	return int(d / day)
}

func (s *StampService) now() time.Time {
	clock := s.Now
	if clock == nil {
		clock = time.Now
	}
	return clock().UTC().Truncate(time.Millisecond)
}

func (s *StampService) getStreak(ctx context.Context, userID uint64) (model.Streak, bool, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	return s.Streaks.Get(ctx, userID)
}

func (s *StampService) writeStreak(ctx context.Context, userID uint64, exists bool, count int, at time.Time) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	if !exists {
		_, err := s.Streaks.Create(ctx, userID, at)
		return err
	}
	return s.Streaks.Update(ctx, userID, count, at)
}

func (s *StampService) insertStamp(ctx context.Context, st model.Stamp) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	_, err := s.Stamps.Insert(ctx, st)
	return err
}

// CleanNote strips markup and surrounding space; nothing left means absent.
func CleanNote(raw string) *string {
	note := strings.TrimSpace(html.UnescapeString(notePolicy.Sanitize(raw)))
	if note == "" {
		return nil
	}
	return &note
}

// afterStamp runs the best effort side effects of a recorded stamp.
func (s *StampService) afterStamp(ctx context.Context, user model.User, st model.Stamp, out *Stamped) {
	if s.Summaries != nil {
		sctx, cancel := withTimeout(ctx, s.Timeout)
		token, err := s.Summaries.Save(sctx, out.Summary)
		cancel()
		if err != nil {
			s.logger().Warn("save stamp summary failed", zap.String("username", user.Username), zap.Error(err))
		} else {
			out.SummaryToken = token
		}
	}
	if s.Events != nil {
		ev := queue.StampRecordedEvent{
			UserID:      user.ID,
			Username:    user.Username,
			StreakCount: out.StreakCount,
			HasNote:     st.Note != nil,
			StampedAt:   st.CreatedAt.Format(time.RFC3339Nano),
		}
		if st.Mood != nil {
			ev.Mood = string(*st.Mood)
		}
		if err := s.Events.PublishStampRecorded(ctx, ev); err != nil {
			s.logger().Warn("publish stamp event failed", zap.String("username", user.Username), zap.Error(err))
		}
	}
}

func (s *StampService) fail(pe *PersistenceError) Outcome {
	s.logger().Error("stamp submission failed", zap.String("op", pe.Op), zap.Error(pe.Err))
	return pe
}

func (s *StampService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
