package model

import "time"

// Streak models a row in the `streaks` table.  Each user owns at most one
// streak row; it is created lazily on the first stamp and rewritten on every
// later stamp.  LastStamp always matches the CreatedAt of the user's most
// recent successful stamp.
type Streak struct {
    UserID    uint64    // streaks.user_id (unique)
    Count     int       // streaks.streak_count, always >= 1
    LastStamp time.Time // streaks.last_stamp (unix ms on disk)
}
