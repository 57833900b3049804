package review

import (
	"time"
)

// CardState holds the scheduling state of a single flashcard. It is owned by
// the persistence store and mutated only through ScheduleAnswer and Unlock.
type CardState struct {
	Status            Status
	DueAt             time.Time // Meaningless while the card is locked.
	LastReviewedAt    time.Time
	UnlockedAt        time.Time // Zero until the first in-context answer; never reset afterwards.
	EaseFactor        float64
	Repetitions       int // Consecutive non-Again answers since the last lapse.
	Lapses            int
	LearningStepIndex int
	ScheduledDays     int // Last committed review interval.
	ReviewCount       int // Lifetime answer count.
	LastSeenDayKey    string
}

// DefaultEaseFactor is the ease assigned to a card that has never been answered.
const DefaultEaseFactor = 2.5

// MaxEaseFactor is the hard upper bound on ease regardless of answer sequence.
const MaxEaseFactor = 3.2

// NewCardState returns the state of a card that has never been answered.
func NewCardState() CardState {
	return CardState{
		Status:     StatusNew,
		EaseFactor: DefaultEaseFactor,
	}
}

// Unlock marks the card as eligible for scheduling. It is idempotent: a card
// that is already unlocked is returned unchanged.
func Unlock(state CardState, now time.Time) CardState {
	if state.IsUnlocked() {
		return state
	}
	state.UnlockedAt = now
	return state
}

// IsUnlocked reports whether the card has ever been answered in context.
func (s CardState) IsUnlocked() bool {
	return !s.UnlockedAt.IsZero()
}

// IsDue reports whether the card's due time is at or before now.
func (s CardState) IsDue(now time.Time) bool {
	return !s.DueAt.After(now)
}

// IsMastered reports whether the card has settled into long-term review:
// review status with an interval of at least a week and at least three
// consecutive successful answers.
func (s CardState) IsMastered() bool {
	return s.Status == StatusReview && s.ScheduledDays >= 7 && s.Repetitions >= 3
}

// CountDue returns the number of unlocked cards that are due at now.
func CountDue(states map[string]CardState, now time.Time) int {
	n := 0
	for _, state := range states {
		if state.IsUnlocked() && state.IsDue(now) {
			n++
		}
	}
	return n
}
