package review

import "math"

// SchedulerConfig holds the tunable scheduling parameters. All fields are
// clamped into safe ranges by Normalize; callers should treat the normalized
// form as canonical.
type SchedulerConfig struct {
	LearningStepsMinutes   []int
	RelearningStepsMinutes []int
	GraduatingIntervalDays int
	EasyIntervalDays       int
	HardIntervalMultiplier float64
	EasyBonus              float64
	IntervalModifier       float64
	MinimumEaseFactor      float64
	NewPerDay              int
	ReviewPerDay           int
}

// DefaultSchedulerConfig returns the stock configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		LearningStepsMinutes:   []int{1, 10},
		RelearningStepsMinutes: []int{10},
		GraduatingIntervalDays: 1,
		EasyIntervalDays:       4,
		HardIntervalMultiplier: 1.2,
		EasyBonus:              1.3,
		IntervalModifier:       1,
		MinimumEaseFactor:      1.3,
		NewPerDay:              20,
		ReviewPerDay:           200,
	}
}

// Normalize clamps every field into its valid range, substituting defaults
// for empty step ladders. It is idempotent.
func (c SchedulerConfig) Normalize() SchedulerConfig {
	defaults := DefaultSchedulerConfig()
	return SchedulerConfig{
		LearningStepsMinutes:   normalizeSteps(c.LearningStepsMinutes, defaults.LearningStepsMinutes),
		RelearningStepsMinutes: normalizeSteps(c.RelearningStepsMinutes, defaults.RelearningStepsMinutes),
		GraduatingIntervalDays: maxInt(1, c.GraduatingIntervalDays),
		EasyIntervalDays:       maxInt(2, c.EasyIntervalDays),
		HardIntervalMultiplier: clampFloat(c.HardIntervalMultiplier, 1.0, 2.0),
		EasyBonus:              clampFloat(c.EasyBonus, 1.05, 2.2),
		IntervalModifier:       clampFloat(c.IntervalModifier, 0.6, 1.6),
		MinimumEaseFactor:      clampFloat(c.MinimumEaseFactor, 1.3, 2.5),
		NewPerDay:              maxInt(0, c.NewPerDay),
		ReviewPerDay:           maxInt(0, c.ReviewPerDay),
	}
}

// normalizeSteps rounds every step up to at least one minute and falls back
// to the default ladder when the input is empty.
func normalizeSteps(steps, fallback []int) []int {
	if len(steps) == 0 {
		return append([]int(nil), fallback...)
	}
	normalized := make([]int, len(steps))
	for i, step := range steps {
		normalized[i] = maxInt(1, step)
	}
	return normalized
}

func clampFloat(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, min, max int) int {
	return maxInt(min, minInt(max, v))
}
