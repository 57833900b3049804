package review

import (
	"math"
	"time"
)

// ScheduleResult is the outcome of answering a card.
type ScheduleResult struct {
	State CardState

	// ReinsertAfter tells the caller how many other queue items to serve
	// before this card recurs in the same session. Nil means the card does
	// not recur this session. It is advisory and never persisted.
	ReinsertAfter *int

	// NextDueLabel is the human label for the card's new due time.
	NextDueLabel string
}

// ScheduleAnswer applies a rating to a card's state and returns the next
// state plus a requeue hint. It is a pure function: the input state is not
// mutated and no I/O happens. It is total over valid CardState values; an
// out-of-range rating is treated as Good.
func ScheduleAnswer(state CardState, rating Rating, config SchedulerConfig, now time.Time) ScheduleResult {
	if !rating.IsValid() {
		rating = Good
	}
	cfg := config.Normalize()

	next := state
	next.LastReviewedAt = now
	next.EaseFactor = adjustEase(state.EaseFactor, rating, cfg.MinimumEaseFactor)
	next.ReviewCount = state.ReviewCount + 1
	if rating == Again {
		next.Repetitions = 0
	} else {
		next.Repetitions = state.Repetitions + 1
	}

	var reinsertAfter *int

	switch {
	case state.Status == StatusNew || state.Status == StatusLearning:
		reinsertAfter = scheduleLadder(&next, rating, cfg.LearningStepsMinutes, cfg, now)

	case state.Status == StatusReview:
		reinsertAfter = scheduleReview(&next, state, rating, cfg, now)

	default: // relearning
		reinsertAfter = scheduleLadder(&next, rating, cfg.RelearningStepsMinutes, cfg, now)
	}

	return ScheduleResult{
		State:         next,
		ReinsertAfter: reinsertAfter,
		NextDueLabel:  DueLabel(next.DueAt, now),
	}
}

// PreviewNextDue returns the label a rating would produce, without committing
// any state.
func PreviewNextDue(state CardState, rating Rating, config SchedulerConfig, now time.Time) string {
	return ScheduleAnswer(state, rating, config, now).NextDueLabel
}

// scheduleLadder walks the learning or relearning step ladder. The ladder a
// card is on follows from its status: new and learning share the learning
// steps, relearning has its own. Graduation moves the card to review.
func scheduleLadder(next *CardState, rating Rating, steps []int, cfg SchedulerConfig, now time.Time) *int {
	ladderStatus := StatusLearning
	if next.Status == StatusRelearning {
		ladderStatus = StatusRelearning
	}
	currentStep := clampInt(next.LearningStepIndex, 0, len(steps)-1)

	switch rating {
	case Again:
		next.Status = ladderStatus
		next.LearningStepIndex = 0
		next.ScheduledDays = 0
		next.DueAt = dueInMinutes(now, steps[0])
		return reinsertHint(1)

	case Hard:
		next.Status = ladderStatus
		next.LearningStepIndex = currentStep
		next.ScheduledDays = 0
		next.DueAt = dueInMinutes(now, steps[currentStep])
		return reinsertHint(3)

	case Good:
		nextStep := currentStep + 1
		if nextStep < len(steps) {
			next.Status = ladderStatus
			next.LearningStepIndex = nextStep
			next.ScheduledDays = 0
			next.DueAt = dueInMinutes(now, steps[nextStep])
			return nil
		}
		graduate(next, now, cfg.GraduatingIntervalDays)
		return nil

	default: // Easy graduates regardless of ladder position.
		graduate(next, now, cfg.EasyIntervalDays)
		return nil
	}
}

// scheduleReview handles a card already in the review cycle. Again lapses the
// card onto the relearning ladder; the other ratings grow the interval from
// the prior committed one. The interval uses the already-adjusted ease.
func scheduleReview(next *CardState, prev CardState, rating Rating, cfg SchedulerConfig, now time.Time) *int {
	baseDays := prev.ScheduledDays
	if baseDays < 1 {
		baseDays = cfg.GraduatingIntervalDays
	}

	if rating == Again {
		next.Status = StatusRelearning
		next.LearningStepIndex = 0
		next.Lapses = prev.Lapses + 1
		next.ScheduledDays = 0
		next.DueAt = dueInMinutes(now, cfg.RelearningStepsMinutes[0])
		return reinsertHint(1)
	}

	days := reviewDays(baseDays, next.EaseFactor, cfg, rating)
	next.Status = StatusReview
	next.LearningStepIndex = 0
	next.ScheduledDays = days
	next.DueAt = dueInDays(now, days)

	if rating == Hard {
		// A weak pass should still resurface within the session.
		return reinsertHint(4)
	}
	return nil
}

// reviewDays computes the next day-scale interval for a successful review.
// Easy is guaranteed to exceed what Hard would have produced from the same
// base.
func reviewDays(baseDays int, easeFactor float64, cfg SchedulerConfig, rating Rating) int {
	base := float64(maxInt(1, baseDays))

	hardDays := maxInt(1, int(math.Round(base*cfg.HardIntervalMultiplier)))
	switch rating {
	case Hard:
		return hardDays
	case Good:
		return maxInt(1, int(math.Round(base*easeFactor*cfg.IntervalModifier)))
	default: // Easy
		easyDays := maxInt(1, int(math.Round(base*easeFactor*cfg.EasyBonus*cfg.IntervalModifier)))
		return maxInt(hardDays+1, easyDays)
	}
}

// graduate moves the card into review with the given day interval.
func graduate(next *CardState, now time.Time, days int) {
	normalized := maxInt(1, days)
	next.Status = StatusReview
	next.LearningStepIndex = 0
	next.ScheduledDays = normalized
	next.DueAt = dueInDays(now, normalized)
}

// adjustEase applies the per-rating ease delta and clamps into
// [minimum, MaxEaseFactor]. It runs on every answer regardless of status.
func adjustEase(current float64, rating Rating, minimum float64) float64 {
	updated := current
	switch rating {
	case Again:
		updated -= 0.2
	case Hard:
		updated -= 0.15
	case Good:
		updated += 0.02
	case Easy:
		updated += 0.15
	}
	return clampFloat(updated, minimum, MaxEaseFactor)
}

func dueInMinutes(now time.Time, minutes int) time.Time {
	return now.Add(time.Duration(maxInt(1, minutes)) * time.Minute)
}

func dueInDays(now time.Time, days int) time.Time {
	return now.Add(time.Duration(maxInt(1, days)) * 24 * time.Hour)
}

func reinsertHint(n int) *int {
	return &n
}
