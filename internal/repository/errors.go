// Package repository holds the database/sql backed stores for users,
// streaks and stamps.  The sentinel errors below let the service layer
// distinguish expected conditions from storage failures.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrUsernameTaken is returned by UserRepo.Create when the unique
// username constraint rejects the insert.
var ErrUsernameTaken = errors.New("username already exists")

// ErrUserNotFound is returned when no user matches the lookup key.
var ErrUserNotFound = errors.New("user not found")

// ErrStreakNotFound is returned by StreakRepo.Update when the user has no
// streak row to update.
var ErrStreakNotFound = errors.New("streak not found")

// ErrStreakExists is returned by StreakRepo.Create when a row for the user
// was inserted concurrently.
var ErrStreakExists = errors.New("streak already exists")

// isDuplicate reports whether err is a unique constraint violation on
// either MySQL (error 1062) or SQLite.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
