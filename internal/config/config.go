package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"essay-reader/internal/domain/review"
)

// Config is the root application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Content   ContentConfig   `yaml:"content"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// StoreConfig holds review state storage settings.
type StoreConfig struct {
	Backend         string `yaml:"backend"          env:"STORE_BACKEND"          env-default:"sqlite"`
	SQLitePath      string `yaml:"sqlite_path"      env:"STORE_SQLITE_PATH"      env-default:"./reader.db"`
	FileDir         string `yaml:"file_dir"         env:"STORE_FILE_DIR"         env-default:"./state"`
	Profile         string `yaml:"profile"          env:"STORE_PROFILE"          env-default:"default"`
	MigrationPolicy string `yaml:"migration_policy" env:"STORE_MIGRATION_POLICY" env-default:"migrate"`
}

// ContentConfig holds card set content settings.
type ContentConfig struct {
	CardSetDir string `yaml:"card_set_dir" env:"CONTENT_CARD_SET_DIR" env-default:"./cardsets"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// SchedulerConfig holds scheduling parameters. These seed the stored state
// for a fresh profile; once state exists, the stored config wins.
type SchedulerConfig struct {
	LearningStepsRaw       string  `yaml:"learning_steps"           env:"SCHED_LEARNING_STEPS"     env-default:"1m,10m"`
	RelearningStepsRaw     string  `yaml:"relearning_steps"         env:"SCHED_RELEARNING_STEPS"   env-default:"10m"`
	GraduatingIntervalDays int     `yaml:"graduating_interval_days" env:"SCHED_GRADUATING_DAYS"    env-default:"1"`
	EasyIntervalDays       int     `yaml:"easy_interval_days"       env:"SCHED_EASY_DAYS"          env-default:"4"`
	HardIntervalMultiplier float64 `yaml:"hard_interval_multiplier" env:"SCHED_HARD_MULT"          env-default:"1.2"`
	EasyBonus              float64 `yaml:"easy_bonus"               env:"SCHED_EASY_BONUS"         env-default:"1.3"`
	IntervalModifier       float64 `yaml:"interval_modifier"        env:"SCHED_INTERVAL_MODIFIER"  env-default:"1.0"`
	MinimumEaseFactor      float64 `yaml:"minimum_ease_factor"      env:"SCHED_MIN_EASE"           env-default:"1.3"`
	NewPerDay              int     `yaml:"new_per_day"              env:"SCHED_NEW_PER_DAY"        env-default:"20"`
	ReviewPerDay           int     `yaml:"review_per_day"           env:"SCHED_REVIEW_PER_DAY"     env-default:"200"`
}

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "sqlite", "file":
	default:
		return fmt.Errorf("store.backend must be sqlite or file (got %q)", c.Store.Backend)
	}

	switch c.Store.MigrationPolicy {
	case "migrate", "reset":
	default:
		return fmt.Errorf("store.migration_policy must be migrate or reset (got %q)", c.Store.MigrationPolicy)
	}

	if c.Store.Profile == "" {
		return fmt.Errorf("store.profile must not be empty")
	}

	if _, err := parseSteps(c.Scheduler.LearningStepsRaw); err != nil {
		return fmt.Errorf("scheduler.learning_steps: %w", err)
	}
	if _, err := parseSteps(c.Scheduler.RelearningStepsRaw); err != nil {
		return fmt.Errorf("scheduler.relearning_steps: %w", err)
	}

	return nil
}

// ReviewConfig converts the scheduler settings to the domain config,
// clamping everything into the supported ranges.
func (c *Config) ReviewConfig() review.SchedulerConfig {
	cfg := review.DefaultSchedulerConfig()

	if steps, err := parseSteps(c.Scheduler.LearningStepsRaw); err == nil && len(steps) > 0 {
		cfg.LearningStepsMinutes = stepsToMinutes(steps)
	}
	if steps, err := parseSteps(c.Scheduler.RelearningStepsRaw); err == nil && len(steps) > 0 {
		cfg.RelearningStepsMinutes = stepsToMinutes(steps)
	}
	cfg.GraduatingIntervalDays = c.Scheduler.GraduatingIntervalDays
	cfg.EasyIntervalDays = c.Scheduler.EasyIntervalDays
	cfg.HardIntervalMultiplier = c.Scheduler.HardIntervalMultiplier
	cfg.EasyBonus = c.Scheduler.EasyBonus
	cfg.IntervalModifier = c.Scheduler.IntervalModifier
	cfg.MinimumEaseFactor = c.Scheduler.MinimumEaseFactor
	cfg.NewPerDay = c.Scheduler.NewPerDay
	cfg.ReviewPerDay = c.Scheduler.ReviewPerDay

	return cfg.Normalize()
}

// parseSteps parses a comma-separated string of durations (e.g. "1m,10m").
// An empty string returns a nil slice.
func parseSteps(raw string) ([]time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	steps := make([]time.Duration, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := time.ParseDuration(p)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", p, err)
		}
		steps = append(steps, d)
	}

	return steps, nil
}

func stepsToMinutes(steps []time.Duration) []int {
	minutes := make([]int, 0, len(steps))
	for _, step := range steps {
		m := int(math.Round(step.Minutes()))
		if m < 1 {
			m = 1
		}
		minutes = append(minutes, m)
	}
	return minutes
}
