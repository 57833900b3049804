package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"essay-reader/internal/domain/content"
	"essay-reader/internal/domain/review"
)

// ReviewSessionUseCase drives review sessions: building the queue, grading
// answers and keeping the daily counters honest.
type ReviewSessionUseCase struct {
	store  review.Store
	log    review.Log
	source content.Source
	logger *slog.Logger
	now    func() time.Time

	// mu serializes the load-modify-save cycle per process. Profiles share
	// one lock; contention is negligible for an interactive reader.
	mu sync.Mutex
}

// NewReviewSessionUseCase creates a new review session use case. answerLog
// may be nil when the configured store has no database behind it.
func NewReviewSessionUseCase(store review.Store, answerLog review.Log, source content.Source, logger *slog.Logger) *ReviewSessionUseCase {
	return &ReviewSessionUseCase{
		store:  store,
		log:    answerLog,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Session is an active review session over a built queue.
type Session struct {
	ID       string
	Profile  string
	Queue    []string
	Cards    map[string]content.Card
	Answered int

	DueLearning int
	DueReview   int
	QueuedNew   int
}

// AnswerResult reports the outcome of grading one card.
type AnswerResult struct {
	State        review.CardState
	NextDueLabel string
	Reinserted   bool
	Remaining    int
}

// StartSession loads content and state, builds the queue and returns a new
// session. An empty queue is a valid session; the caller decides what to show.
func (uc *ReviewSessionUseCase) StartSession(ctx context.Context, profile string) (*Session, error) {
	sets, err := uc.source.LoadSets()
	if err != nil {
		return nil, fmt.Errorf("failed to load card sets: %w", err)
	}
	cards := content.AllCards(sets)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, err := uc.store.Load(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load review state: %w", err)
	}

	build := review.BuildSessionQueue(cards, state.Cards, state.Config, state.DailyStats, uc.now())

	session := &Session{
		ID:          uuid.NewString(),
		Profile:     profile,
		Queue:       build.Queue,
		Cards:       make(map[string]content.Card, len(cards)),
		DueLearning: build.DueLearning,
		DueReview:   build.DueReview,
		QueuedNew:   build.QueuedNew,
	}
	for _, card := range cards {
		session.Cards[card.ID] = card
	}

	uc.logger.Info("session started",
		"session_id", session.ID,
		"profile", profile,
		"queue", len(session.Queue),
		"learning", build.DueLearning,
		"review", build.DueReview,
		"new", build.QueuedNew)

	return session, nil
}

// UnlockCard marks a card as encountered in the text, making it eligible for
// scheduling. Unlocking an already-unlocked card changes nothing.
func (uc *ReviewSessionUseCase) UnlockCard(ctx context.Context, profile, cardID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, err := uc.store.Load(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to load review state: %w", err)
	}

	card, ok := state.Cards[cardID]
	if !ok {
		card = review.NewCardState()
	}
	unlocked := review.Unlock(card, uc.now())
	if unlocked == card && ok {
		return nil
	}
	state.Cards[cardID] = unlocked

	if err := uc.store.Save(ctx, profile, state); err != nil {
		return fmt.Errorf("failed to save review state: %w", err)
	}
	return nil
}

// Answer grades the card at the front of the session queue. The scheduling
// itself is pure; this method owns the surrounding bookkeeping: daily
// counters, the answer log and the re-insertion of short-interval cards back
// into the queue.
func (uc *ReviewSessionUseCase) Answer(ctx context.Context, session *Session, cardID string, rating review.Rating) (*AnswerResult, error) {
	now := uc.now()
	today := review.TodayKey(now)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, err := uc.store.Load(ctx, session.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load review state: %w", err)
	}

	card, ok := state.Cards[cardID]
	if !ok {
		card = review.NewCardState()
	}
	card = review.Unlock(card, now)
	statusBefore := card.Status

	result := review.ScheduleAnswer(card, rating, state.Config, now)
	state.Cards[cardID] = result.State

	// A card contributes to the daily caps once per day; repeat answers in
	// the same day only bump the answer total.
	stats := review.RolloverIfNewDay(state.DailyStats, today)
	if card.LastSeenDayKey != today {
		if statusBefore == review.StatusNew {
			stats.NewSeen++
		} else {
			stats.ReviewSeen++
		}
		next := result.State
		next.LastSeenDayKey = today
		state.Cards[cardID] = next
	}
	stats.Answers++
	state.DailyStats = stats

	// State persistence is best effort: a failed save must not interrupt
	// the session that is already underway.
	if err := uc.store.Save(ctx, session.Profile, state); err != nil {
		uc.logger.Error("failed to save review state", "profile", session.Profile, "error", err)
	}

	if uc.log != nil {
		entry := &review.LogEntry{
			Profile:       session.Profile,
			SessionID:     session.ID,
			CardID:        cardID,
			Rating:        rating,
			StatusBefore:  statusBefore,
			StatusAfter:   result.State.Status,
			ScheduledDays: result.State.ScheduledDays,
			AnsweredAt:    now,
		}
		if err := uc.log.Append(ctx, entry); err != nil {
			uc.logger.Error("failed to append review log", "card_id", cardID, "error", err)
		}
	}

	session.Answered++
	uc.advanceQueue(session, cardID, result.ReinsertAfter)

	return &AnswerResult{
		State:        state.Cards[cardID],
		NextDueLabel: result.NextDueLabel,
		Reinserted:   result.ReinsertAfter != nil,
		Remaining:    len(session.Queue),
	}, nil
}

// advanceQueue pops the answered card and, for short-interval answers,
// splices it back a few positions later so it comes around again this
// session.
func (uc *ReviewSessionUseCase) advanceQueue(session *Session, cardID string, reinsertAfter *int) {
	if len(session.Queue) > 0 && session.Queue[0] == cardID {
		session.Queue = session.Queue[1:]
	}
	if reinsertAfter == nil {
		return
	}

	pos := *reinsertAfter
	if pos < 0 {
		pos = 0
	}
	if pos > len(session.Queue) {
		pos = len(session.Queue)
	}

	queue := make([]string, 0, len(session.Queue)+1)
	queue = append(queue, session.Queue[:pos]...)
	queue = append(queue, cardID)
	queue = append(queue, session.Queue[pos:]...)
	session.Queue = queue
}

// EndSession closes a session. Only sessions with at least one answer count
// toward the daily completed-sessions total.
func (uc *ReviewSessionUseCase) EndSession(ctx context.Context, session *Session) error {
	if session.Answered == 0 {
		uc.logger.Info("session ended without answers", "session_id", session.ID)
		return nil
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, err := uc.store.Load(ctx, session.Profile)
	if err != nil {
		return fmt.Errorf("failed to load review state: %w", err)
	}

	stats := review.RolloverIfNewDay(state.DailyStats, review.TodayKey(uc.now()))
	stats.SessionsCompleted++
	state.DailyStats = stats

	if err := uc.store.Save(ctx, session.Profile, state); err != nil {
		return fmt.Errorf("failed to save review state: %w", err)
	}

	uc.logger.Info("session ended",
		"session_id", session.ID,
		"answered", session.Answered,
		"sessions_today", stats.SessionsCompleted)
	return nil
}

// RebuildQueue rebuilds the session queue against current state, e.g. after
// ladder cards have come due mid-session.
func (uc *ReviewSessionUseCase) RebuildQueue(ctx context.Context, session *Session) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, err := uc.store.Load(ctx, session.Profile)
	if err != nil {
		return fmt.Errorf("failed to load review state: %w", err)
	}

	cards := make([]content.Card, 0, len(session.Cards))
	for _, card := range session.Cards {
		cards = append(cards, card)
	}

	build := review.BuildSessionQueue(cards, state.Cards, state.Config, state.DailyStats, uc.now())
	session.Queue = build.Queue
	session.DueLearning = build.DueLearning
	session.DueReview = build.DueReview
	session.QueuedNew = build.QueuedNew
	return nil
}

// PreviewAnswer returns the due label the card would get for each rating,
// without touching any state.
func (uc *ReviewSessionUseCase) PreviewAnswer(ctx context.Context, session *Session, cardID string) (map[review.Rating]string, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, err := uc.store.Load(ctx, session.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load review state: %w", err)
	}

	card, ok := state.Cards[cardID]
	if !ok {
		card = review.NewCardState()
	}
	card = review.Unlock(card, uc.now())

	previews := make(map[review.Rating]string, 4)
	for _, rating := range review.Ratings() {
		previews[rating] = review.PreviewNextDue(card, rating, state.Config, uc.now())
	}
	return previews, nil
}

// DueNow returns the number of unlocked cards currently due for a profile,
// ignoring daily caps.
func (uc *ReviewSessionUseCase) DueNow(ctx context.Context, profile string) (int, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, err := uc.store.Load(ctx, profile)
	if err != nil {
		return 0, fmt.Errorf("failed to load review state: %w", err)
	}
	return review.CountDue(state.Cards, uc.now()), nil
}

// SetProgress summarizes review progress for one card set.
type SetProgress struct {
	Title    string
	Slug     string
	Total    int
	Unlocked int
	Reviewed int
	Mastered int
	Due      int
}

// Progress reports per-set progress for a profile.
func (uc *ReviewSessionUseCase) Progress(ctx context.Context, profile string) ([]SetProgress, error) {
	sets, err := uc.source.LoadSets()
	if err != nil {
		return nil, fmt.Errorf("failed to load card sets: %w", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	state, err := uc.store.Load(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load review state: %w", err)
	}

	now := uc.now()
	progress := make([]SetProgress, 0, len(sets))
	for _, set := range sets {
		p := SetProgress{Title: set.Title, Slug: set.Slug, Total: len(set.Cards)}
		for _, card := range set.Cards {
			cardState, ok := state.Cards[card.ID]
			if !ok || !cardState.IsUnlocked() {
				continue
			}
			p.Unlocked++
			if cardState.ReviewCount > 0 {
				p.Reviewed++
			}
			if cardState.IsMastered() {
				p.Mastered++
			}
			if cardState.IsDue(now) {
				p.Due++
			}
		}
		progress = append(progress, p)
	}

	return progress, nil
}
