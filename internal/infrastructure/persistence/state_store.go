package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"essay-reader/internal/domain/review"
)

type stateStore struct {
	db     *sql.DB
	policy MigrationPolicy
	now    func() time.Time
}

// NewStateStore creates a SQLite-backed review state store. Each profile owns
// a single versioned blob row; decoding normalizes and migrates the payload
// so callers always receive a current-version state.
func NewStateStore(db *sql.DB, policy MigrationPolicy) review.Store {
	return &stateStore{db: db, policy: policy, now: time.Now}
}

func (s *stateStore) Load(ctx context.Context, profile string) (*review.StoredState, error) {
	today := review.TodayKey(s.now())

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM review_state WHERE profile = ?`, profile).Scan(&payload)
	if err == sql.ErrNoRows {
		return review.NewStoredState(today), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load review state: %w", err)
	}

	return DecodeState([]byte(payload), today, s.policy), nil
}

func (s *stateStore) Save(ctx context.Context, profile string, state *review.StoredState) error {
	payload, err := EncodeState(state, review.TodayKey(s.now()))
	if err != nil {
		return fmt.Errorf("failed to encode review state: %w", err)
	}

	query := `
		INSERT INTO review_state (profile, version, payload, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(profile) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err = s.db.ExecContext(ctx, query, profile, review.SchemaVersion, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save review state: %w", err)
	}

	return nil
}
