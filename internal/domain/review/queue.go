package review

import (
	"time"

	"essay-reader/internal/domain/content"
)

// SessionQueueBuild is the ordered review sequence for a session plus the
// quota bookkeeping behind it.
type SessionQueueBuild struct {
	Queue []string // Card ids, learning first, then capped review, then capped new.

	DueLearning     int // Learning/relearning cards due; never capped.
	DueReview       int // Review cards due before the daily cap was applied.
	QueuedNew       int // New cards actually admitted to the queue.
	ReviewRemaining int // Review answers still allowed today.
	NewRemaining    int // New cards still allowed today.
}

// BuildSessionQueue partitions the unlocked, due cards into learning, review
// and new buckets and concatenates them under the daily quotas. Cards mid
// ladder are never blocked by quotas; review and new cards beyond their caps
// simply wait for the next day. Locked cards are invisible to scheduling.
func BuildSessionQueue(
	cards []content.Card,
	states map[string]CardState,
	config SchedulerConfig,
	daily DailyStats,
	now time.Time,
) SessionQueueBuild {
	cfg := config.Normalize()
	reviewRemaining := maxInt(0, cfg.ReviewPerDay-daily.ReviewSeen)
	newRemaining := maxInt(0, cfg.NewPerDay-daily.NewSeen)

	var dueLearning, dueReview, dueNew []string

	for _, card := range cards {
		state, ok := states[card.ID]
		if !ok {
			state = NewCardState()
		}
		if !state.IsUnlocked() {
			continue
		}
		if !state.IsDue(now) {
			continue
		}

		switch state.Status {
		case StatusLearning, StatusRelearning:
			dueLearning = append(dueLearning, card.ID)
		case StatusReview:
			dueReview = append(dueReview, card.ID)
		case StatusNew:
			dueNew = append(dueNew, card.ID)
		}
	}

	reviewSlice := dueReview[:minInt(len(dueReview), reviewRemaining)]
	newSlice := dueNew[:minInt(len(dueNew), newRemaining)]

	queue := make([]string, 0, len(dueLearning)+len(reviewSlice)+len(newSlice))
	queue = append(queue, dueLearning...)
	queue = append(queue, reviewSlice...)
	queue = append(queue, newSlice...)

	return SessionQueueBuild{
		Queue:           queue,
		DueLearning:     len(dueLearning),
		DueReview:       len(dueReview),
		QueuedNew:       len(newSlice),
		ReviewRemaining: reviewRemaining,
		NewRemaining:    newRemaining,
	}
}
