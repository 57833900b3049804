package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"essay-reader/internal/app"
	"essay-reader/internal/application/usecases"
	"essay-reader/internal/config"
	"essay-reader/internal/domain/review"
	"essay-reader/internal/infrastructure/filesystem"
	"essay-reader/internal/infrastructure/persistence"
	"essay-reader/internal/interfaces/terminal"
)

func main() {
	// A missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Log)

	store, answerLog, closeStore, err := buildStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	source := filesystem.NewCardSetLoader(cfg.Content.CardSetDir)

	reviewUC := usecases.NewReviewSessionUseCase(store, answerLog, source, logger)
	settingsUC := usecases.NewSettingsUseCase(store, logger)

	if err := seedConfig(cfg, settingsUC, logger); err != nil {
		logger.Error("failed to seed scheduler config", "error", err)
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logger.Info("shutting down")
		cancel()
	}()

	runner := terminal.NewRunner(reviewUC, settingsUC, cfg.Store.Profile, logger, os.Stdin, os.Stdout)
	if err := runner.Run(ctx); err != nil {
		logger.Error("session error", "error", err)
		os.Exit(1)
	}
}

// buildStore wires the configured storage backend. The answer log is only
// available with the sqlite backend.
func buildStore(cfg *config.Config, logger *slog.Logger) (review.Store, review.Log, func(), error) {
	policy := persistence.ParseMigrationPolicy(cfg.Store.MigrationPolicy)

	switch cfg.Store.Backend {
	case "file":
		logger.Info("using file store", "dir", cfg.Store.FileDir)
		return persistence.NewFileStore(cfg.Store.FileDir, policy), nil, func() {}, nil
	default:
		db, err := persistence.NewSQLiteDB(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("using sqlite store", "path", cfg.Store.SQLitePath)
		store := persistence.NewStateStore(db, policy)
		answerLog := persistence.NewReviewLogRepository(db)
		return store, answerLog, func() { db.Close() }, nil
	}
}

// seedConfig applies the configured scheduler parameters to a profile that
// has no stored config yet. An existing profile keeps its stored settings.
func seedConfig(cfg *config.Config, settingsUC *usecases.SettingsUseCase, logger *slog.Logger) error {
	ctx := context.Background()

	current, err := settingsUC.Get(ctx, cfg.Store.Profile)
	if err != nil {
		return err
	}

	defaults := review.DefaultSchedulerConfig().Normalize()
	if !configsEqual(current, defaults) {
		return nil
	}

	seeded := cfg.ReviewConfig()
	if configsEqual(seeded, defaults) {
		return nil
	}

	if _, err := settingsUC.Update(ctx, cfg.Store.Profile, seeded); err != nil {
		return err
	}
	logger.Info("seeded scheduler config", "profile", cfg.Store.Profile)
	return nil
}

func configsEqual(a, b review.SchedulerConfig) bool {
	if len(a.LearningStepsMinutes) != len(b.LearningStepsMinutes) ||
		len(a.RelearningStepsMinutes) != len(b.RelearningStepsMinutes) {
		return false
	}
	for i := range a.LearningStepsMinutes {
		if a.LearningStepsMinutes[i] != b.LearningStepsMinutes[i] {
			return false
		}
	}
	for i := range a.RelearningStepsMinutes {
		if a.RelearningStepsMinutes[i] != b.RelearningStepsMinutes[i] {
			return false
		}
	}
	return a.GraduatingIntervalDays == b.GraduatingIntervalDays &&
		a.EasyIntervalDays == b.EasyIntervalDays &&
		a.HardIntervalMultiplier == b.HardIntervalMultiplier &&
		a.EasyBonus == b.EasyBonus &&
		a.IntervalModifier == b.IntervalModifier &&
		a.MinimumEaseFactor == b.MinimumEaseFactor &&
		a.NewPerDay == b.NewPerDay &&
		a.ReviewPerDay == b.ReviewPerDay
}
