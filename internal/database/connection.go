package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/vocapp/internal/config"
)

// Connect opens the configured database and makes sure the schema exists.
func Connect(cfg config.Database) (*sqlx.DB, error) {
	dsn := cfg.DSN

	if cfg.Driver == "sqlite3" && dsn == "" {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %v", err)
		}
		dsn = filepath.Join(cfg.DataDir, "vocapp.db")
	}

	db, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if cfg.Driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// One connection: SQLite has a single writer, and ":memory:" is per connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	timestamp := "TIMESTAMP"
	boolFalse := "BOOLEAN NOT NULL DEFAULT false"
	if db.DriverName() == "postgres" {
		idColumn = "BIGSERIAL PRIMARY KEY"
		timestamp = "TIMESTAMPTZ"
	}

	statements := []struct {
		name  string
		query string
	}{
		{"learners table", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS learners (
				id %s,
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				wants_updates %s,
				telegram_chat_id BIGINT,
				created_at %s NOT NULL
			)`, idColumn, boolFalse, timestamp)},
		{"words table", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS words (
				id %s,
				learner_id BIGINT NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
				word TEXT NOT NULL,
				definition TEXT NOT NULL,
				box_level INTEGER NOT NULL CHECK (box_level >= 1),
				last_reviewed_at %s NOT NULL,
				next_due_at %s NOT NULL,
				created_at %s NOT NULL,
				UNIQUE(learner_id, word)
			)`, idColumn, timestamp, timestamp, timestamp)},
		{"due index", `CREATE INDEX IF NOT EXISTS idx_words_learner_due ON words (learner_id, next_due_at)`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt.query); err != nil {
			return fmt.Errorf("failed to create %s: %v", stmt.name, err)
		}
	}
	return nil
}
