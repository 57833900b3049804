package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"essay-reader/internal/domain/review"
)

// SettingsUseCase reads and updates the per-profile scheduler configuration.
type SettingsUseCase struct {
	store  review.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewSettingsUseCase creates a new settings use case
func NewSettingsUseCase(store review.Store, logger *slog.Logger) *SettingsUseCase {
	return &SettingsUseCase{store: store, logger: logger, now: time.Now}
}

// Get returns the profile's scheduler config, normalized.
func (uc *SettingsUseCase) Get(ctx context.Context, profile string) (review.SchedulerConfig, error) {
	state, err := uc.store.Load(ctx, profile)
	if err != nil {
		return review.SchedulerConfig{}, fmt.Errorf("failed to load review state: %w", err)
	}
	return state.Config.Normalize(), nil
}

// Update persists a new scheduler config. Out-of-range values are clamped
// rather than rejected, so an update never fails validation.
func (uc *SettingsUseCase) Update(ctx context.Context, profile string, config review.SchedulerConfig) (review.SchedulerConfig, error) {
	state, err := uc.store.Load(ctx, profile)
	if err != nil {
		return review.SchedulerConfig{}, fmt.Errorf("failed to load review state: %w", err)
	}

	normalized := config.Normalize()
	state.Config = normalized
	if err := uc.store.Save(ctx, profile, state); err != nil {
		return review.SchedulerConfig{}, fmt.Errorf("failed to save review state: %w", err)
	}

	uc.logger.Info("scheduler config updated",
		"profile", profile,
		"new_per_day", normalized.NewPerDay,
		"review_per_day", normalized.ReviewPerDay)
	return normalized, nil
}

// DailyStats returns today's counters for a profile.
func (uc *SettingsUseCase) DailyStats(ctx context.Context, profile string) (review.DailyStats, error) {
	state, err := uc.store.Load(ctx, profile)
	if err != nil {
		return review.DailyStats{}, fmt.Errorf("failed to load review state: %w", err)
	}
	return review.RolloverIfNewDay(state.DailyStats, review.TodayKey(uc.now())), nil
}
