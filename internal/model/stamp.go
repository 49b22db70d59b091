package model

import (
    "errors"
    "strings"
    "time"
)

// Mood is the optional emotional tag attached to a stamp.
type Mood string

const (
    MoodHappy Mood = "happy"
    MoodSad   Mood = "sad"
)

// ErrInvalidMood is returned by ParseMood for anything other than happy/sad.
var ErrInvalidMood = errors.New("invalid mood")

// ParseMood normalizes a client supplied mood.  An empty string means the
// mood is absent and yields a nil pointer.
func ParseMood(s string) (*Mood, error) {
    s = strings.ToLower(strings.TrimSpace(s))
    switch Mood(s) {
    case "":
        return nil, nil
    case MoodHappy, MoodSad:
        m := Mood(s)
        return &m, nil
    }
    return nil, ErrInvalidMood
}

// Stamp represents one row of the append-only `stamps` table.  Mood and
// Note are nil when the user did not supply them.
type Stamp struct {
    ID        uint64    // stamps.id
    UserID    uint64    // stamps.user_id
    Mood      *Mood     // stamps.mood (nullable)
    Note      *string   // stamps.notes (nullable)
    CreatedAt time.Time // stamps.created_at (unix ms on disk)
}

// StampView is the history item returned to clients.  In the public view
// Mood and Note are always nil regardless of what is stored.
type StampView struct {
    Date time.Time `json:"date"`
    Mood *Mood     `json:"mood,omitempty"`
    Note *string   `json:"note,omitempty"`
}
