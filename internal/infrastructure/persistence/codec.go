package persistence

import (
	"encoding/json"
	"math"
	"time"

	"essay-reader/internal/domain/review"
)

// MigrationPolicy decides what happens to a stored blob whose schema version
// is older than review.SchemaVersion.
type MigrationPolicy string

const (
	// PolicyMigrate runs the ordered v1→v2→v3 migration chain, preserving
	// as much of the review history as the old blob allows.
	PolicyMigrate MigrationPolicy = "migrate"
	// PolicyReset discards the blob and reinitializes on any mismatch.
	PolicyReset MigrationPolicy = "reset"
)

// ParseMigrationPolicy maps a config string to a policy, defaulting to
// migrate for anything unrecognized.
func ParseMigrationPolicy(s string) MigrationPolicy {
	if MigrationPolicy(s) == PolicyReset {
		return PolicyReset
	}
	return PolicyMigrate
}

// DecodeState turns a raw persisted blob into a fully normalized StoredState.
// It never fails: corrupt JSON yields a fresh default state, an out-of-date
// version is handled per the policy, and every scalar field independently
// falls back to its typed default. The daily stats are rolled over to
// todayKey as part of decoding.
func DecodeState(data []byte, todayKey string, policy MigrationPolicy) *review.StoredState {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return review.NewStoredState(todayKey)
	}

	root, ok := raw.(map[string]any)
	if !ok {
		return review.NewStoredState(todayKey)
	}

	version := toIntOr(root["version"], 1)
	if version != review.SchemaVersion {
		if policy == PolicyReset {
			return review.NewStoredState(todayKey)
		}
		for v := version; v < review.SchemaVersion; v++ {
			if migrate, ok := migrations[v]; ok {
				root = migrate(root)
			}
		}
	}

	state := normalizeState(root, todayKey)
	return state
}

// EncodeState serializes a StoredState in the wire format (timestamps as Unix
// milliseconds, current schema version). The state is re-normalized and the
// daily stats rolled over before writing, so a stored blob is always clean.
func EncodeState(state *review.StoredState, todayKey string) ([]byte, error) {
	out := stateJSON{
		Version:    review.SchemaVersion,
		Cards:      map[string]cardStateJSON{},
		Config:     configToJSON(state.Config.Normalize()),
		DailyStats: statsToJSON(review.RolloverIfNewDay(state.DailyStats, todayKey)),
	}
	for id, card := range state.Cards {
		out.Cards[id] = cardToJSON(card)
	}
	return json.Marshal(out)
}

// migrations is the ordered chain of pure schema upgrades, keyed by source
// version.
var migrations = map[int]func(map[string]any) map[string]any{
	1: migrateV1toV2,
	2: migrateV2toV3,
}

// migrateV1toV2 renames the original flat fields (interval, nextReview,
// lastReview) to their v2 names and derives a status for cards that predate
// the status field.
func migrateV1toV2(root map[string]any) map[string]any {
	cards, _ := root["cards"].(map[string]any)
	for id, rawCard := range cards {
		card, ok := rawCard.(map[string]any)
		if !ok {
			continue
		}

		// Values are stored as float64 so the normalization pass reads
		// them the same way as freshly decoded JSON.
		if _, ok := card["scheduledDays"]; !ok {
			card["scheduledDays"] = toFloatOr(card["interval"], 0)
		}
		if _, ok := card["dueAt"]; !ok {
			card["dueAt"] = toFloatOr(card["nextReview"], 0)
		}
		if _, ok := card["lastReviewedAt"]; !ok {
			card["lastReviewedAt"] = toFloatOr(card["lastReview"], 0)
		}
		if _, ok := card["reviewCount"]; !ok {
			card["reviewCount"] = toFloatOr(card["repetitions"], 0)
		}
		if _, ok := card["status"]; !ok {
			switch {
			case toIntOr(card["repetitions"], 0) > 0:
				card["status"] = string(review.StatusReview)
			case toIntOr(card["nextReview"], 0) > 0:
				card["status"] = string(review.StatusLearning)
			default:
				card["status"] = string(review.StatusNew)
			}
		}
		cards[id] = card
	}

	root["version"] = 2
	return root
}

// migrateV2toV3 re-locks every card: v3 ties scheduling eligibility to the
// first in-context answer, so previously unlocked cards must be re-earned
// where they appear in the text.
func migrateV2toV3(root map[string]any) map[string]any {
	cards, _ := root["cards"].(map[string]any)
	for id, rawCard := range cards {
		card, ok := rawCard.(map[string]any)
		if !ok {
			continue
		}
		card["unlockedAt"] = float64(0)
		cards[id] = card
	}

	root["version"] = 3
	return root
}

// normalizeState builds a typed StoredState from an untrusted decoded blob.
func normalizeState(root map[string]any, todayKey string) *review.StoredState {
	state := review.NewStoredState(todayKey)

	if cards, ok := root["cards"].(map[string]any); ok {
		for id, rawCard := range cards {
			state.Cards[id] = normalizeCardState(rawCard)
		}
	}
	if cfg, ok := root["config"].(map[string]any); ok {
		state.Config = normalizeConfig(cfg)
	}
	if stats, ok := root["dailyStats"].(map[string]any); ok {
		state.DailyStats = normalizeDailyStats(stats, todayKey)
	}

	state.DailyStats = review.RolloverIfNewDay(state.DailyStats, todayKey)
	return state
}

// normalizeCardState validates every field of a stored card independently,
// substituting the initial-state default for anything missing, wrong-typed
// or out of range.
func normalizeCardState(raw any) review.CardState {
	card := review.NewCardState()
	fields, ok := raw.(map[string]any)
	if !ok {
		return card
	}

	if status := review.Status(toStringOr(fields["status"], "")); status.IsValid() {
		card.Status = status
	}
	card.DueAt = millisToTime(toInt64Or(fields["dueAt"], 0))
	card.LastReviewedAt = millisToTime(toInt64Or(fields["lastReviewedAt"], 0))
	card.UnlockedAt = millisToTime(toInt64Or(fields["unlockedAt"], 0))
	card.EaseFactor = clamp(toFloatOr(fields["easeFactor"], review.DefaultEaseFactor), 1.3, review.MaxEaseFactor)
	card.Repetitions = nonNegative(toIntOr(fields["repetitions"], 0))
	card.Lapses = nonNegative(toIntOr(fields["lapses"], 0))
	card.LearningStepIndex = nonNegative(toIntOr(fields["learningStepIndex"], 0))
	card.ScheduledDays = nonNegative(toIntOr(fields["scheduledDays"], 0))
	card.ReviewCount = nonNegative(toIntOr(fields["reviewCount"], 0))
	card.LastSeenDayKey = toStringOr(fields["lastSeenDayKey"], "")
	return card
}

// normalizeConfig merges stored config values over the defaults and clamps
// the result.
func normalizeConfig(fields map[string]any) review.SchedulerConfig {
	cfg := review.DefaultSchedulerConfig()

	if steps, ok := toIntSlice(fields["learningStepsMinutes"]); ok {
		cfg.LearningStepsMinutes = steps
	}
	if steps, ok := toIntSlice(fields["relearningStepsMinutes"]); ok {
		cfg.RelearningStepsMinutes = steps
	}
	cfg.GraduatingIntervalDays = toIntOr(fields["graduatingIntervalDays"], cfg.GraduatingIntervalDays)
	cfg.EasyIntervalDays = toIntOr(fields["easyIntervalDays"], cfg.EasyIntervalDays)
	cfg.HardIntervalMultiplier = toFloatOr(fields["hardIntervalMultiplier"], cfg.HardIntervalMultiplier)
	cfg.EasyBonus = toFloatOr(fields["easyBonus"], cfg.EasyBonus)
	cfg.IntervalModifier = toFloatOr(fields["intervalModifier"], cfg.IntervalModifier)
	cfg.MinimumEaseFactor = toFloatOr(fields["minimumEaseFactor"], cfg.MinimumEaseFactor)
	cfg.NewPerDay = toIntOr(fields["newPerDay"], cfg.NewPerDay)
	cfg.ReviewPerDay = toIntOr(fields["reviewPerDay"], cfg.ReviewPerDay)

	return cfg.Normalize()
}

func normalizeDailyStats(fields map[string]any, todayKey string) review.DailyStats {
	dayKey := toStringOr(fields["dayKey"], "")
	if dayKey == "" {
		dayKey = todayKey
	}
	return review.DailyStats{
		DayKey:            dayKey,
		NewSeen:           nonNegative(toIntOr(fields["newSeen"], 0)),
		ReviewSeen:        nonNegative(toIntOr(fields["reviewSeen"], 0)),
		SessionsCompleted: nonNegative(toIntOr(fields["sessionsCompleted"], 0)),
		Answers:           nonNegative(toIntOr(fields["answers"], 0)),
	}
}

// Wire structs for encoding. Timestamps travel as Unix milliseconds to stay
// compatible with blobs written by earlier versions of the reader.

type stateJSON struct {
	Version    int                      `json:"version"`
	Cards      map[string]cardStateJSON `json:"cards"`
	Config     configJSON               `json:"config"`
	DailyStats dailyStatsJSON           `json:"dailyStats"`
}

type cardStateJSON struct {
	Status            review.Status `json:"status"`
	DueAt             int64         `json:"dueAt"`
	LastReviewedAt    int64         `json:"lastReviewedAt"`
	UnlockedAt        int64         `json:"unlockedAt"`
	EaseFactor        float64       `json:"easeFactor"`
	Repetitions       int           `json:"repetitions"`
	Lapses            int           `json:"lapses"`
	LearningStepIndex int           `json:"learningStepIndex"`
	ScheduledDays     int           `json:"scheduledDays"`
	ReviewCount       int           `json:"reviewCount"`
	LastSeenDayKey    string        `json:"lastSeenDayKey"`
}

type configJSON struct {
	LearningStepsMinutes   []int   `json:"learningStepsMinutes"`
	RelearningStepsMinutes []int   `json:"relearningStepsMinutes"`
	GraduatingIntervalDays int     `json:"graduatingIntervalDays"`
	EasyIntervalDays       int     `json:"easyIntervalDays"`
	HardIntervalMultiplier float64 `json:"hardIntervalMultiplier"`
	EasyBonus              float64 `json:"easyBonus"`
	IntervalModifier       float64 `json:"intervalModifier"`
	MinimumEaseFactor      float64 `json:"minimumEaseFactor"`
	NewPerDay              int     `json:"newPerDay"`
	ReviewPerDay           int     `json:"reviewPerDay"`
}

type dailyStatsJSON struct {
	DayKey            string `json:"dayKey"`
	NewSeen           int    `json:"newSeen"`
	ReviewSeen        int    `json:"reviewSeen"`
	SessionsCompleted int    `json:"sessionsCompleted"`
	Answers           int    `json:"answers"`
}

func cardToJSON(card review.CardState) cardStateJSON {
	return cardStateJSON{
		Status:            card.Status,
		DueAt:             timeToMillis(card.DueAt),
		LastReviewedAt:    timeToMillis(card.LastReviewedAt),
		UnlockedAt:        timeToMillis(card.UnlockedAt),
		EaseFactor:        card.EaseFactor,
		Repetitions:       card.Repetitions,
		Lapses:            card.Lapses,
		LearningStepIndex: card.LearningStepIndex,
		ScheduledDays:     card.ScheduledDays,
		ReviewCount:       card.ReviewCount,
		LastSeenDayKey:    card.LastSeenDayKey,
	}
}

func configToJSON(cfg review.SchedulerConfig) configJSON {
	return configJSON{
		LearningStepsMinutes:   cfg.LearningStepsMinutes,
		RelearningStepsMinutes: cfg.RelearningStepsMinutes,
		GraduatingIntervalDays: cfg.GraduatingIntervalDays,
		EasyIntervalDays:       cfg.EasyIntervalDays,
		HardIntervalMultiplier: cfg.HardIntervalMultiplier,
		EasyBonus:              cfg.EasyBonus,
		IntervalModifier:       cfg.IntervalModifier,
		MinimumEaseFactor:      cfg.MinimumEaseFactor,
		NewPerDay:              cfg.NewPerDay,
		ReviewPerDay:           cfg.ReviewPerDay,
	}
}

func statsToJSON(stats review.DailyStats) dailyStatsJSON {
	return dailyStatsJSON{
		DayKey:            stats.DayKey,
		NewSeen:           stats.NewSeen,
		ReviewSeen:        stats.ReviewSeen,
		SessionsCompleted: stats.SessionsCompleted,
		Answers:           stats.Answers,
	}
}

// Coercion helpers for untrusted decoded JSON. json.Unmarshal into any
// produces float64 for every number; anything else falls back.

func toFloatOr(v any, fallback float64) float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

func toIntOr(v any, fallback int) int {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return int(math.Round(f))
}

func toInt64Or(v any, fallback int64) int64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return int64(math.Round(f))
}

func toStringOr(v any, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

func toIntSlice(v any) ([]int, bool) {
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		f, ok := item.(float64)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		out = append(out, int(math.Round(f)))
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

func millisToTime(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func timeToMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
