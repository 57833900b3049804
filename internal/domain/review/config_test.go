package review

import (
	"reflect"
	"testing"
)

func TestNormalizeClampsOutOfRangeValues(t *testing.T) {
	cfg := SchedulerConfig{
		LearningStepsMinutes:   []int{0, -5, 30},
		RelearningStepsMinutes: nil,
		GraduatingIntervalDays: 0,
		EasyIntervalDays:       1,
		HardIntervalMultiplier: 9.9,
		EasyBonus:              0.5,
		IntervalModifier:       3.0,
		MinimumEaseFactor:      0.1,
		NewPerDay:              -3,
		ReviewPerDay:           -1,
	}

	got := cfg.Normalize()

	want := SchedulerConfig{
		LearningStepsMinutes:   []int{1, 1, 30},
		RelearningStepsMinutes: []int{10},
		GraduatingIntervalDays: 1,
		EasyIntervalDays:       2,
		HardIntervalMultiplier: 2.0,
		EasyBonus:              1.05,
		IntervalModifier:       1.6,
		MinimumEaseFactor:      1.3,
		NewPerDay:              0,
		ReviewPerDay:           0,
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	cfg := SchedulerConfig{
		LearningStepsMinutes: []int{0, 45},
		EasyBonus:            5,
		NewPerDay:            -1,
	}

	once := cfg.Normalize()
	twice := once.Normalize()

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Normalize not idempotent: %+v != %+v", once, twice)
	}
}

func TestNormalizeKeepsDefaultsUnchanged(t *testing.T) {
	defaults := DefaultSchedulerConfig()
	if !reflect.DeepEqual(defaults.Normalize(), defaults) {
		t.Errorf("default config changed by Normalize: %+v", defaults.Normalize())
	}
}
