package persistence

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	// Review state table: one versioned blob per profile
	reviewStateTable := `
	CREATE TABLE IF NOT EXISTS review_state (
		profile TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		payload TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	_, err := db.Exec(reviewStateTable)
	if err != nil {
		return fmt.Errorf("failed to create review_state table: %w", err)
	}

	// Review log table: append-only record of every answer
	reviewLogTable := `
	CREATE TABLE IF NOT EXISTS review_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		profile TEXT NOT NULL,
		session_id TEXT NOT NULL,
		card_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		status_before TEXT NOT NULL,
		status_after TEXT NOT NULL,
		scheduled_days INTEGER NOT NULL DEFAULT 0,
		answered_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	_, err = db.Exec(reviewLogTable)
	if err != nil {
		return fmt.Errorf("failed to create review_log table: %w", err)
	}

	reviewLogIndex := `
	CREATE INDEX IF NOT EXISTS idx_review_log_profile_card
	ON review_log (profile, card_id);`

	_, err = db.Exec(reviewLogIndex)
	if err != nil {
		return fmt.Errorf("failed to create review_log index: %w", err)
	}

	return nil
}
