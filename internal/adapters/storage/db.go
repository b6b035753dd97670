package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS member (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL UNIQUE,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		status TEXT NOT NULL,
		FOREIGN KEY (account_id) REFERENCES account(id)
	);

	CREATE TABLE IF NOT EXISTS class_type (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		duration_min INTEGER NOT NULL,
		default_capacity INTEGER NOT NULL,
		difficulty TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS class (
		id TEXT PRIMARY KEY,
		class_type_id TEXT NOT NULL,
		name TEXT NOT NULL,
		price_cents INTEGER NOT NULL DEFAULT 0,
		duration_min INTEGER NOT NULL,
		capacity INTEGER NOT NULL,
		trainer_id TEXT,
		room TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (class_type_id) REFERENCES class_type(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS schedule (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		class_id TEXT NOT NULL,
		trainer_id TEXT NOT NULL,
		class_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		room TEXT NOT NULL DEFAULT '',
		max_participants INTEGER NOT NULL,
		current_participants INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (class_id) REFERENCES class(id),
		FOREIGN KEY (trainer_id) REFERENCES account(id)
	);

	CREATE INDEX IF NOT EXISTS idx_schedule_trainer_date ON schedule(trainer_id, class_date);

	CREATE TABLE IF NOT EXISTS enrollment (
		id TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		status TEXT NOT NULL,
		enrolled_at TEXT NOT NULL,
		checkin_time TEXT,
		checkout_time TEXT,
		invoice_ref TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (schedule_id) REFERENCES schedule(id),
		FOREIGN KEY (member_id) REFERENCES member(id)
	);

	CREATE INDEX IF NOT EXISTS idx_enrollment_member ON enrollment(member_id, status);
	CREATE INDEX IF NOT EXISTS idx_enrollment_schedule ON enrollment(schedule_id, status);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT,
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
