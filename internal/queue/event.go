// Package queue defines message payloads exchanged over the message broker.
package queue

// StampRecordedQueue is the durable queue stamp events are routed to.
const StampRecordedQueue = "stamp.recorded"

// StampRecordedEvent is published after a stamp and its streak update were
// both persisted.  Notes are never included; HasNote only records whether
// one was written.
type StampRecordedEvent struct {
    UserID      uint64 `json:"user_id"`
    Username    string `json:"username"`
    StreakCount int    `json:"streak_count"`
    Mood        string `json:"mood,omitempty"`
    HasNote     bool   `json:"has_note"`
    StampedAt   string `json:"stamped_at"`
}
