package usecases

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"essay-reader/internal/domain/content"
	"essay-reader/internal/domain/review"
)

// memStore keeps states in memory and deep-copies on the way in and out, so
// tests observe the same ownership rules a real store enforces.
type memStore struct {
	states  map[string]*review.StoredState
	today   string
	saveErr error
	saves   int
}

func newMemStore(today string) *memStore {
	return &memStore{states: map[string]*review.StoredState{}, today: today}
}

func (m *memStore) Load(ctx context.Context, profile string) (*review.StoredState, error) {
	state, ok := m.states[profile]
	if !ok {
		return review.NewStoredState(m.today), nil
	}
	return copyState(state), nil
}

func (m *memStore) Save(ctx context.Context, profile string, state *review.StoredState) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.states[profile] = copyState(state)
	return nil
}

func copyState(state *review.StoredState) *review.StoredState {
	out := *state
	out.Cards = make(map[string]review.CardState, len(state.Cards))
	for id, card := range state.Cards {
		out.Cards[id] = card
	}
	return &out
}

type memLog struct {
	entries []*review.LogEntry
}

func (m *memLog) Append(ctx context.Context, entry *review.LogEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memLog) FindByCard(ctx context.Context, profile, cardID string) ([]*review.LogEntry, error) {
	return nil, nil
}

func (m *memLog) CountBySession(ctx context.Context, profile, sessionID string) (int, error) {
	n := 0
	for _, e := range m.entries {
		if e.Profile == profile && e.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

type staticSource struct {
	sets []content.Set
}

func (s staticSource) LoadSets() ([]content.Set, error) { return s.sets, nil }

func testCards(ids ...string) []content.Card {
	cards := make([]content.Card, 0, len(ids))
	for _, id := range ids {
		cards = append(cards, content.Card{ID: id, Question: "q " + id, Answer: "a " + id})
	}
	return cards
}

func newTestUseCase(t *testing.T, store *memStore, answerLog review.Log, cards []content.Card) *ReviewSessionUseCase {
	t.Helper()
	source := staticSource{sets: []content.Set{{Title: "Essay One", Slug: "essay-one", Cards: cards}}}
	uc := NewReviewSessionUseCase(store, answerLog, source, slog.New(slog.NewTextHandler(io.Discard, nil)))
	uc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return uc
}

func seedUnlocked(store *memStore, when time.Time, ids ...string) {
	state := review.NewStoredState(store.today)
	for _, id := range ids {
		state.Cards[id] = review.Unlock(review.NewCardState(), when)
	}
	store.states["alice"] = state
}

func TestAnswerCountsDailyStatsOncePerCardPerDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemStore("2026-03-10")
	seedUnlocked(store, now.Add(-time.Hour), "c1")
	uc := newTestUseCase(t, store, nil, testCards("c1"))

	session, err := uc.StartSession(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"c1"}, session.Queue)

	// First answer today: counts as a new card and as an answer.
	_, err = uc.Answer(context.Background(), session, "c1", review.Again)
	require.NoError(t, err)

	state := store.states["alice"]
	assert.Equal(t, 1, state.DailyStats.NewSeen)
	assert.Equal(t, 0, state.DailyStats.ReviewSeen)
	assert.Equal(t, 1, state.DailyStats.Answers)

	// Same card again on the same day: only the answer total moves.
	_, err = uc.Answer(context.Background(), session, "c1", review.Good)
	require.NoError(t, err)

	state = store.states["alice"]
	assert.Equal(t, 1, state.DailyStats.NewSeen)
	assert.Equal(t, 0, state.DailyStats.ReviewSeen)
	assert.Equal(t, 2, state.DailyStats.Answers)
	assert.Equal(t, "2026-03-10", state.Cards["c1"].LastSeenDayKey)
}

func TestAnswerCountsNonNewCardAsReviewSeen(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemStore("2026-03-10")

	state := review.NewStoredState(store.today)
	card := review.Unlock(review.NewCardState(), now.Add(-48*time.Hour))
	card.Status = review.StatusReview
	card.ScheduledDays = 3
	card.DueAt = now.Add(-time.Hour)
	state.Cards["c1"] = card
	store.states["alice"] = state

	uc := newTestUseCase(t, store, nil, testCards("c1"))
	session, err := uc.StartSession(context.Background(), "alice")
	require.NoError(t, err)

	_, err = uc.Answer(context.Background(), session, "c1", review.Good)
	require.NoError(t, err)

	saved := store.states["alice"]
	assert.Equal(t, 0, saved.DailyStats.NewSeen)
	assert.Equal(t, 1, saved.DailyStats.ReviewSeen)
}

func TestAnswerReinsertsLadderCards(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemStore("2026-03-10")
	seedUnlocked(store, now.Add(-time.Hour), "c1", "c2", "c3", "c4")
	uc := newTestUseCase(t, store, nil, testCards("c1", "c2", "c3", "c4"))

	session, err := uc.StartSession(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"c1", "c2", "c3", "c4"}, session.Queue)

	// Again: the card recurs after one other card.
	result, err := uc.Answer(context.Background(), session, "c1", review.Again)
	require.NoError(t, err)
	assert.True(t, result.Reinserted)
	assert.Equal(t, []string{"c2", "c1", "c3", "c4"}, session.Queue)

	// Good on a new card only advances the ladder, no recurrence.
	result, err = uc.Answer(context.Background(), session, "c2", review.Good)
	require.NoError(t, err)
	assert.False(t, result.Reinserted)
	assert.Equal(t, []string{"c1", "c3", "c4"}, session.Queue)
}

func TestAnswerReinsertClampsToQueueLength(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemStore("2026-03-10")
	seedUnlocked(store, now.Add(-time.Hour), "c1", "c2")
	uc := newTestUseCase(t, store, nil, testCards("c1", "c2"))

	session, err := uc.StartSession(context.Background(), "alice")
	require.NoError(t, err)

	// Hard wants to resurface after 3 cards; only 1 remains, so it goes last.
	_, err = uc.Answer(context.Background(), session, "c1", review.Hard)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2", "c1"}, session.Queue)
}

func TestAnswerSaveFailureDoesNotStopSession(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemStore("2026-03-10")
	seedUnlocked(store, now.Add(-time.Hour), "c1")
	uc := newTestUseCase(t, store, nil, testCards("c1"))

	session, err := uc.StartSession(context.Background(), "alice")
	require.NoError(t, err)

	store.saveErr = errors.New("disk full")

	result, err := uc.Answer(context.Background(), session, "c1", review.Good)
	require.NoError(t, err, "save failures are logged, not returned")
	assert.NotNil(t, result)
	assert.Equal(t, 1, session.Answered)
}

func TestAnswerAppendsLogEntry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemStore("2026-03-10")
	seedUnlocked(store, now.Add(-time.Hour), "c1")
	answerLog := &memLog{}
	uc := newTestUseCase(t, store, answerLog, testCards("c1"))

	session, err := uc.StartSession(context.Background(), "alice")
	require.NoError(t, err)

	_, err = uc.Answer(context.Background(), session, "c1", review.Good)
	require.NoError(t, err)

	require.Len(t, answerLog.entries, 1)
	entry := answerLog.entries[0]
	assert.Equal(t, session.ID, entry.SessionID)
	assert.Equal(t, review.StatusNew, entry.StatusBefore)
	assert.Equal(t, review.StatusLearning, entry.StatusAfter)
	assert.Equal(t, review.Good, entry.Rating)
}

func TestEndSessionCountsOnlyAnsweredSessions(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemStore("2026-03-10")
	seedUnlocked(store, now.Add(-time.Hour), "c1")
	uc := newTestUseCase(t, store, nil, testCards("c1"))

	// Ending an untouched session leaves the counter alone.
	session, err := uc.StartSession(context.Background(), "alice")
	require.NoError(t, err)
	require.NoError(t, uc.EndSession(context.Background(), session))

	loaded, err := store.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Zero(t, loaded.DailyStats.SessionsCompleted)

	// One answer makes the session count.
	session, err = uc.StartSession(context.Background(), "alice")
	require.NoError(t, err)
	_, err = uc.Answer(context.Background(), session, "c1", review.Good)
	require.NoError(t, err)
	require.NoError(t, uc.EndSession(context.Background(), session))

	loaded, err = store.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.DailyStats.SessionsCompleted)
}

func TestStartSessionHonorsQuotas(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemStore("2026-03-10")

	state := review.NewStoredState(store.today)
	state.Config.NewPerDay = 2
	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		state.Cards[id] = review.Unlock(review.NewCardState(), now.Add(-time.Hour))
	}
	store.states["alice"] = state

	uc := newTestUseCase(t, store, nil, testCards("c1", "c2", "c3", "c4"))
	session, err := uc.StartSession(context.Background(), "alice")
	require.NoError(t, err)

	assert.Len(t, session.Queue, 2)
	assert.Equal(t, 2, session.QueuedNew)
}

func TestUnlockCardIsIdempotent(t *testing.T) {
	store := newMemStore("2026-03-10")
	uc := newTestUseCase(t, store, nil, testCards("c1"))
	ctx := context.Background()

	require.NoError(t, uc.UnlockCard(ctx, "alice", "c1"))
	first := store.states["alice"].Cards["c1"].UnlockedAt
	require.False(t, first.IsZero())

	require.NoError(t, uc.UnlockCard(ctx, "alice", "c1"))
	assert.True(t, store.states["alice"].Cards["c1"].UnlockedAt.Equal(first))
}

func TestProgressSummaries(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemStore("2026-03-10")

	state := review.NewStoredState(store.today)
	mastered := review.Unlock(review.NewCardState(), now.Add(-time.Hour))
	mastered.Status = review.StatusReview
	mastered.ScheduledDays = 10
	mastered.Repetitions = 5
	mastered.ReviewCount = 8
	mastered.DueAt = now.Add(48 * time.Hour)
	state.Cards["c1"] = mastered
	state.Cards["c2"] = review.Unlock(review.NewCardState(), now.Add(-time.Hour))
	store.states["alice"] = state

	uc := newTestUseCase(t, store, nil, testCards("c1", "c2", "c3"))
	progress, err := uc.Progress(context.Background(), "alice")
	require.NoError(t, err)

	require.Len(t, progress, 1)
	p := progress[0]
	assert.Equal(t, "essay-one", p.Slug)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 2, p.Unlocked)
	assert.Equal(t, 1, p.Reviewed)
	assert.Equal(t, 1, p.Mastered)
	assert.Equal(t, 1, p.Due, "the new unlocked card is due, the scheduled one is not")
}
