package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"essay-reader/internal/application/usecases"
	"essay-reader/internal/domain/review"
)

// Runner drives an interactive review session on a terminal.
type Runner struct {
	reviewUC   *usecases.ReviewSessionUseCase
	settingsUC *usecases.SettingsUseCase
	profile    string
	logger     *slog.Logger
	in         io.Reader
	out        io.Writer
}

// NewRunner creates a new terminal runner
func NewRunner(reviewUC *usecases.ReviewSessionUseCase, settingsUC *usecases.SettingsUseCase, profile string, logger *slog.Logger, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		reviewUC:   reviewUC,
		settingsUC: settingsUC,
		profile:    profile,
		logger:     logger,
		in:         in,
		out:        out,
	}
}

// errQuit signals that the user asked to stop the session.
var errQuit = errors.New("quit")

// Run executes one review session: show each queued card, grade the answer,
// repeat until the queue is empty or the user quits. The session counters
// are closed out either way.
func (r *Runner) Run(ctx context.Context) error {
	session, err := r.reviewUC.StartSession(ctx, r.profile)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	fmt.Fprintf(r.out, "Review session: %d card(s) queued (%d learning, %d review, %d new)\n\n",
		len(session.Queue), session.DueLearning, session.DueReview, session.QueuedNew)

	if len(session.Queue) == 0 {
		fmt.Fprintln(r.out, "Nothing due right now. Come back later.")
		return r.reviewUC.EndSession(ctx, session)
	}

	lines := r.readLines(ctx)

	for len(session.Queue) > 0 {
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out, "\nSession interrupted.")
			return r.finish(session)
		default:
		}

		cardID := session.Queue[0]
		card, ok := session.Cards[cardID]
		if !ok {
			// Stale queue entry, e.g. a card removed from the content.
			session.Queue = session.Queue[1:]
			continue
		}

		if err := r.askCard(ctx, session, cardID, card.Question, card.Answer, lines); err != nil {
			if errors.Is(err, errQuit) {
				return r.finish(session)
			}
			return err
		}
	}

	fmt.Fprintln(r.out, "\nQueue finished.")
	return r.finish(session)
}

func (r *Runner) askCard(ctx context.Context, session *usecases.Session, cardID, question, answer string, lines <-chan string) error {
	fmt.Fprintf(r.out, "Q: %s\n", question)
	fmt.Fprint(r.out, "[enter] reveal, [q] quit > ")

	input, err := r.nextLine(ctx, lines)
	if err != nil {
		return err
	}
	if isQuit(input) {
		return errQuit
	}

	fmt.Fprintf(r.out, "A: %s\n", answer)

	previews, err := r.reviewUC.PreviewAnswer(ctx, session, cardID)
	if err != nil {
		return fmt.Errorf("failed to preview answer: %w", err)
	}

	for {
		fmt.Fprintf(r.out, "[1] %s (%s)  [2] %s (%s)  [3] %s (%s)  [4] %s (%s)  [q] quit > ",
			review.Again.Label(), previews[review.Again],
			review.Hard.Label(), previews[review.Hard],
			review.Good.Label(), previews[review.Good],
			review.Easy.Label(), previews[review.Easy])

		input, err = r.nextLine(ctx, lines)
		if err != nil {
			return err
		}
		if isQuit(input) {
			return errQuit
		}

		rating, ok := parseRating(input)
		if !ok {
			fmt.Fprintln(r.out, "Please answer 1-4 (or a/h/g/e).")
			continue
		}

		result, err := r.reviewUC.Answer(ctx, session, cardID, rating)
		if err != nil {
			return fmt.Errorf("failed to grade answer: %w", err)
		}

		fmt.Fprintf(r.out, "Next: %s. %d card(s) left.\n\n", result.NextDueLabel, result.Remaining)
		return nil
	}
}

// finish ends the session and prints the daily totals.
func (r *Runner) finish(session *usecases.Session) error {
	// The run context may already be canceled; closing out the session
	// still has to happen.
	ctx := context.Background()

	if err := r.reviewUC.EndSession(ctx, session); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	stats, err := r.settingsUC.DailyStats(ctx, r.profile)
	if err != nil {
		r.logger.Warn("failed to load daily stats", "error", err)
		return nil
	}

	fmt.Fprintf(r.out, "Today: %d answer(s), %d new, %d review, %d session(s) completed.\n",
		stats.Answers, stats.NewSeen, stats.ReviewSeen, stats.SessionsCompleted)

	if due, err := r.reviewUC.DueNow(ctx, r.profile); err == nil && due > 0 {
		fmt.Fprintf(r.out, "%d card(s) still due.\n", due)
	}
	return nil
}

// readLines pumps stdin lines into a channel so prompts can also observe
// context cancellation.
func (r *Runner) readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func (r *Runner) nextLine(ctx context.Context, lines <-chan string) (string, error) {
	select {
	case line, ok := <-lines:
		if !ok {
			return "", errQuit
		}
		return strings.TrimSpace(line), nil
	case <-ctx.Done():
		return "", errQuit
	}
}

func isQuit(input string) bool {
	switch strings.ToLower(input) {
	case "q", "quit", "exit":
		return true
	}
	return false
}

func parseRating(input string) (review.Rating, bool) {
	switch strings.ToLower(input) {
	case "1", "a", "again":
		return review.Again, true
	case "2", "h", "hard":
		return review.Hard, true
	case "3", "g", "good":
		return review.Good, true
	case "4", "e", "easy":
		return review.Easy, true
	}
	return 0, false
}
