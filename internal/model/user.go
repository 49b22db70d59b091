package model

import "time"

// User represents an account as stored in the `users` table.  The
// username is unique; the PIN is only ever kept as a bcrypt hash.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Username  – unique login name chosen at registration.
//  PinHash   – bcrypt hash of the user's PIN.
//  CreatedAt – registration time.
type User struct {
    ID        uint64    // users.id
    Username  string    // users.username
    PinHash   string    // users.pin_hash
    CreatedAt time.Time // users.created_at (unix ms on disk)
}
