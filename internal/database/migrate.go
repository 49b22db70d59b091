package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Timestamps are stored as unix milliseconds in BIGINT columns so the same
// queries work on MySQL and SQLite.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username   VARCHAR(64)  COLLATE utf8mb4_bin NOT NULL,
		pin_hash   VARCHAR(255) NOT NULL,
		created_at BIGINT       NOT NULL,
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS streaks (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id      BIGINT UNSIGNED NOT NULL,
		streak_count INT             NOT NULL,
		last_stamp   BIGINT          NOT NULL,
		UNIQUE KEY uq_streaks_user (user_id),
		CONSTRAINT fk_streaks_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS stamps (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		mood       VARCHAR(8) NULL,
		notes      TEXT       NULL,
		created_at BIGINT     NOT NULL,
		KEY idx_stamps_user_created (user_id, created_at),
		CONSTRAINT fk_stamps_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		username   TEXT    NOT NULL UNIQUE,
		pin_hash   TEXT    NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS streaks (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER NOT NULL UNIQUE REFERENCES users(id),
		streak_count INTEGER NOT NULL,
		last_stamp   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stamps (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL REFERENCES users(id),
		mood       TEXT    NULL,
		notes      TEXT    NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stamps_user_created ON stamps (user_id, created_at)`,
}

// Migrate creates the users, streaks and stamps tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	stmts := mysqlSchema
	if driver == "sqlite" {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
