package model

// StampSummary is the short-lived hand-off shown on the screen that
// follows a successful stamp.  Timestamp is unix milliseconds.
type StampSummary struct {
    Username  string `json:"username"`
    Streak    int    `json:"streak"`
    Mood      *Mood  `json:"mood"`
    Timestamp int64  `json:"timestamp"`
}
