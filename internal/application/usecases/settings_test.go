package usecases

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"essay-reader/internal/domain/review"
)

func TestSettingsUpdateClampsAndPersists(t *testing.T) {
	store := newMemStore("2026-03-10")
	uc := NewSettingsUseCase(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	cfg := review.DefaultSchedulerConfig()
	cfg.NewPerDay = -5
	cfg.EasyBonus = 99
	cfg.LearningStepsMinutes = []int{0, 15}

	updated, err := uc.Update(ctx, "alice", cfg)
	require.NoError(t, err)

	assert.Equal(t, 0, updated.NewPerDay)
	assert.Equal(t, 2.2, updated.EasyBonus)
	assert.Equal(t, []int{1, 15}, updated.LearningStepsMinutes)

	got, err := uc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestSettingsDailyStatsRollsOver(t *testing.T) {
	store := newMemStore("2026-03-09")
	state := review.NewStoredState("2026-03-09")
	state.DailyStats.Answers = 12
	store.states["alice"] = state

	uc := NewSettingsUseCase(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	uc.now = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC) }

	stats, err := uc.DailyStats(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", stats.DayKey)
	assert.Zero(t, stats.Answers)
}
