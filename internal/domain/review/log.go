package review

import (
	"context"
	"time"
)

// LogEntry records a single graded answer for later inspection.
type LogEntry struct {
	ID            int64
	Profile       string
	SessionID     string
	CardID        string
	Rating        Rating
	StatusBefore  Status
	StatusAfter   Status
	ScheduledDays int
	AnsweredAt    time.Time
}

// Log is an append-only record of answers. Failures to append are reported
// but must not block the review flow.
type Log interface {
	Append(ctx context.Context, entry *LogEntry) error
	FindByCard(ctx context.Context, profile, cardID string) ([]*LogEntry, error)
	CountBySession(ctx context.Context, profile, sessionID string) (int, error)
}
