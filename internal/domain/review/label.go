package review

import (
	"fmt"
	"math"
	"time"
)

// DueLabel renders a due time as a short human label relative to now:
// "now" for anything past due, then the largest unit that still reads
// naturally ("in 5m", "in 3h", "tomorrow", "in 12d").
func DueLabel(dueAt, now time.Time) string {
	if !dueAt.After(now) {
		return "now"
	}

	diff := dueAt.Sub(now)

	minutes := int(math.Round(diff.Minutes()))
	if minutes < 60 {
		return fmt.Sprintf("in %dm", minutes)
	}

	hours := int(math.Round(diff.Hours()))
	if hours < 24 {
		return fmt.Sprintf("in %dh", hours)
	}

	days := int(math.Round(diff.Hours() / 24))
	if days == 1 {
		return "tomorrow"
	}
	return fmt.Sprintf("in %dd", days)
}
