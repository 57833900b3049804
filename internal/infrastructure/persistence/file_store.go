package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"essay-reader/internal/domain/review"
)

type fileStore struct {
	dir    string
	policy MigrationPolicy
	now    func() time.Time
}

// NewFileStore creates a review state store that keeps one JSON file per
// profile under dir. Useful for running without a database and for
// inspecting state by hand.
func NewFileStore(dir string, policy MigrationPolicy) review.Store {
	return &fileStore{dir: dir, policy: policy, now: time.Now}
}

func (s *fileStore) Load(ctx context.Context, profile string) (*review.StoredState, error) {
	today := review.TodayKey(s.now())

	data, err := os.ReadFile(s.path(profile))
	if errors.Is(err, fs.ErrNotExist) {
		return review.NewStoredState(today), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	return DecodeState(data, today, s.policy), nil
}

func (s *fileStore) Save(ctx context.Context, profile string, state *review.StoredState) error {
	payload, err := EncodeState(state, review.TodayKey(s.now()))
	if err != nil {
		return fmt.Errorf("failed to encode review state: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	// Write to a temp file and rename so a crash never leaves a torn blob.
	tmp := s.path(profile) + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path(profile)); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

func (s *fileStore) path(profile string) string {
	return filepath.Join(s.dir, profile+".json")
}
