package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open establishes a connection to the database and makes sure the schema exists
func Open(driver, dsn string, maxOpenConns int) (*sqlx.DB, error) {
	if driver == "sqlite3" && !isMemoryDSN(dsn) {
		if dir := filepath.Dir(sqlitePath(dsn)); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	switch driver {
	case "sqlite3":
		// SQLite doesn't support multiple writers, and an in-memory database
		// lives only as long as its single connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	default:
		if maxOpenConns > 0 {
			db.SetMaxOpenConns(maxOpenConns)
		}
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates necessary tables if they don't exist
func Migrate(db *sqlx.DB) error {
	statements := sqliteSchema
	if db.DriverName() == "postgres" {
		statements = postgresSchema
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func sqlitePath(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		dsn = dsn[:i]
	}
	return dsn
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		telegram_chat_id INTEGER,
		reminder_hour INTEGER NOT NULL DEFAULT 9,
		reminders_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY,
		subelement TEXT NOT NULL,
		question_text TEXT NOT NULL,
		answer_a TEXT NOT NULL,
		answer_b TEXT NOT NULL,
		answer_c TEXT NOT NULL,
		answer_d TEXT NOT NULL,
		correct_answer TEXT NOT NULL,
		explanation TEXT NOT NULL DEFAULT '',
		fcc_references TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS questions_subelement_idx ON questions(subelement)`,
	`CREATE TABLE IF NOT EXISTS user_progress (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		ease_factor INTEGER NOT NULL DEFAULT 250,
		interval_days INTEGER NOT NULL DEFAULT 0,
		consecutive_correct INTEGER NOT NULL DEFAULT 0,
		next_review_date TIMESTAMP,
		is_mastered BOOLEAN NOT NULL DEFAULT FALSE,
		times_correct INTEGER NOT NULL DEFAULT 0,
		times_incorrect INTEGER NOT NULL DEFAULT 0,
		last_attempted_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, question_id)
	)`,
	`CREATE INDEX IF NOT EXISTS user_progress_user_idx ON user_progress(user_id)`,
	`CREATE TABLE IF NOT EXISTS study_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		session_type TEXT NOT NULL,
		questions_attempted INTEGER NOT NULL DEFAULT 0,
		questions_correct INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		completed_at TIMESTAMP,
		score INTEGER,
		passed BOOLEAN
	)`,
	`CREATE INDEX IF NOT EXISTS study_sessions_user_idx ON study_sessions(user_id)`,
	`CREATE TABLE IF NOT EXISTS bookmarks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, question_id)
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR PRIMARY KEY,
		email VARCHAR NOT NULL DEFAULT '',
		first_name VARCHAR NOT NULL DEFAULT '',
		last_name VARCHAR NOT NULL DEFAULT '',
		telegram_chat_id BIGINT,
		reminder_hour INTEGER NOT NULL DEFAULT 9,
		reminders_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id VARCHAR PRIMARY KEY,
		subelement VARCHAR(3) NOT NULL,
		question_text TEXT NOT NULL,
		answer_a TEXT NOT NULL,
		answer_b TEXT NOT NULL,
		answer_c TEXT NOT NULL,
		answer_d TEXT NOT NULL,
		correct_answer VARCHAR(1) NOT NULL,
		explanation TEXT NOT NULL DEFAULT '',
		fcc_references TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS questions_subelement_idx ON questions(subelement)`,
	`CREATE TABLE IF NOT EXISTS user_progress (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		question_id VARCHAR NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		ease_factor INTEGER NOT NULL DEFAULT 250,
		interval_days INTEGER NOT NULL DEFAULT 0,
		consecutive_correct INTEGER NOT NULL DEFAULT 0,
		next_review_date TIMESTAMPTZ,
		is_mastered BOOLEAN NOT NULL DEFAULT FALSE,
		times_correct INTEGER NOT NULL DEFAULT 0,
		times_incorrect INTEGER NOT NULL DEFAULT 0,
		last_attempted_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, question_id)
	)`,
	`CREATE INDEX IF NOT EXISTS user_progress_user_idx ON user_progress(user_id)`,
	`CREATE TABLE IF NOT EXISTS study_sessions (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		session_type VARCHAR(50) NOT NULL,
		questions_attempted INTEGER NOT NULL DEFAULT 0,
		questions_correct INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ,
		score INTEGER,
		passed BOOLEAN
	)`,
	`CREATE INDEX IF NOT EXISTS study_sessions_user_idx ON study_sessions(user_id)`,
	`CREATE TABLE IF NOT EXISTS bookmarks (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		question_id VARCHAR NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(user_id, question_id)
	)`,
}
