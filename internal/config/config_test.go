package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	chtmp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Store.Backend != "sqlite" {
		t.Errorf("backend = %q, want sqlite", cfg.Store.Backend)
	}
	if cfg.Store.Profile != "default" {
		t.Errorf("profile = %q, want default", cfg.Store.Profile)
	}
	if cfg.Store.MigrationPolicy != "migrate" {
		t.Errorf("migration policy = %q, want migrate", cfg.Store.MigrationPolicy)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("STORE_FILE_DIR", "/tmp/states")
	t.Setenv("SCHED_NEW_PER_DAY", "7")
	chtmp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Store.Backend != "file" {
		t.Errorf("backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.Store.FileDir != "/tmp/states" {
		t.Errorf("file dir = %q, want /tmp/states", cfg.Store.FileDir)
	}
	if cfg.Scheduler.NewPerDay != 7 {
		t.Errorf("new per day = %d, want 7", cfg.Scheduler.NewPerDay)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
store:
  backend: file
  profile: reader
scheduler:
  learning_steps: "2m,25m"
  new_per_day: 10
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Store.Profile != "reader" {
		t.Errorf("profile = %q, want reader", cfg.Store.Profile)
	}

	review := cfg.ReviewConfig()
	if len(review.LearningStepsMinutes) != 2 || review.LearningStepsMinutes[0] != 2 || review.LearningStepsMinutes[1] != 25 {
		t.Errorf("learning steps = %v, want [2 25]", review.LearningStepsMinutes)
	}
	if review.NewPerDay != 10 {
		t.Errorf("new per day = %d, want 10", review.NewPerDay)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad backend", map[string]string{"STORE_BACKEND": "redis"}},
		{"bad migration policy", map[string]string{"STORE_MIGRATION_POLICY": "yolo"}},
		{"empty profile", map[string]string{"STORE_PROFILE": ""}},
		{"bad learning steps", map[string]string{"SCHED_LEARNING_STEPS": "1m,banana"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			chtmp(t)

			if _, err := Load(); err == nil {
				t.Fatal("Load() succeeded, want error")
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded, want error for missing explicit config file")
	}
}

func TestReviewConfigClampsThroughNormalize(t *testing.T) {
	cfg := &Config{}
	cfg.Scheduler.LearningStepsRaw = "1m,10m"
	cfg.Scheduler.RelearningStepsRaw = "10m"
	cfg.Scheduler.EasyBonus = 99
	cfg.Scheduler.NewPerDay = -2

	review := cfg.ReviewConfig()
	if review.EasyBonus != 2.2 {
		t.Errorf("easy bonus = %v, want 2.2", review.EasyBonus)
	}
	if review.NewPerDay != 0 {
		t.Errorf("new per day = %d, want 0", review.NewPerDay)
	}
}

// chtmp runs the test from an empty directory so a stray ./config.yaml in
// the working tree cannot leak into it.
func chtmp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}
