package review

import "time"

// DailyStats holds the day-keyed answer counters consumed by the queue
// builder. The record is replaced wholesale whenever the stored day key no
// longer matches the current local date.
type DailyStats struct {
	DayKey            string
	NewSeen           int
	ReviewSeen        int
	SessionsCompleted int
	Answers           int
}

// TodayKey returns the local-date key ("2006-01-02") for the given time.
func TodayKey(now time.Time) string {
	return now.Format("2006-01-02")
}

// NewDailyStats returns zeroed counters for the given day key.
func NewDailyStats(dayKey string) DailyStats {
	return DailyStats{DayKey: dayKey}
}

// RolloverIfNewDay replaces the counters with a fresh record when the stored
// day key differs from todayKey. This is the only state mutation in the
// system not triggered by an answer; the store calls it on every load and
// save.
func RolloverIfNewDay(stats DailyStats, todayKey string) DailyStats {
	if stats.DayKey != todayKey {
		return NewDailyStats(todayKey)
	}
	return stats
}
