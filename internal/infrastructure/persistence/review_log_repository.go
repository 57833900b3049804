package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"essay-reader/internal/domain/review"
)

type reviewLogRepository struct {
	db *sql.DB
}

// NewReviewLogRepository creates a new review log repository
func NewReviewLogRepository(db *sql.DB) review.Log {
	return &reviewLogRepository{db: db}
}

// Append persists a graded answer
func (r *reviewLogRepository) Append(ctx context.Context, entry *review.LogEntry) error {
	query := `
		INSERT INTO review_log
		(profile, session_id, card_id, rating, status_before, status_after, scheduled_days, answered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	answeredAt := entry.AnsweredAt
	if answeredAt.IsZero() {
		answeredAt = time.Now()
	}

	result, err := r.db.ExecContext(ctx, query,
		entry.Profile, entry.SessionID, entry.CardID,
		int(entry.Rating), string(entry.StatusBefore), string(entry.StatusAfter),
		entry.ScheduledDays, answeredAt.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to save review log entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get review log entry ID: %w", err)
	}

	entry.ID = id
	return nil
}

// FindByCard retrieves the answer history for a card, most recent first
func (r *reviewLogRepository) FindByCard(ctx context.Context, profile, cardID string) ([]*review.LogEntry, error) {
	query := `
		SELECT id, profile, session_id, card_id, rating, status_before, status_after, scheduled_days, answered_at
		FROM review_log
		WHERE profile = ? AND card_id = ?
		ORDER BY answered_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, profile, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query review log: %w", err)
	}
	defer rows.Close()

	var entries []*review.LogEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}

// CountBySession counts the answers recorded for a session
func (r *reviewLogRepository) CountBySession(ctx context.Context, profile, sessionID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM review_log WHERE profile = ? AND session_id = ?
	`, profile, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count session answers: %w", err)
	}
	return count, nil
}

func (r *reviewLogRepository) scanEntry(rows *sql.Rows) (*review.LogEntry, error) {
	var entry review.LogEntry
	var rating int
	var statusBefore, statusAfter string
	var answeredAtStr sql.NullString

	err := rows.Scan(&entry.ID, &entry.Profile, &entry.SessionID, &entry.CardID,
		&rating, &statusBefore, &statusAfter, &entry.ScheduledDays, &answeredAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to scan review log entry: %w", err)
	}

	entry.Rating = review.Rating(rating)
	entry.StatusBefore = review.Status(statusBefore)
	entry.StatusAfter = review.Status(statusAfter)

	if answeredAtStr.Valid {
		answeredAt, err := parseDateTime(answeredAtStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse answered_at: %w", err)
		}
		entry.AnsweredAt = answeredAt
	}

	return &entry, nil
}

// parseDateTime handles the datetime layouts SQLite may hand back.
func parseDateTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		"2006-01-02 15:04:05+00:00",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse datetime: %s", s)
}
