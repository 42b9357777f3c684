package review

import (
	"context"
	"sort"
	"time"

	"github.com/example/vocapp/internal/apperr"
	"github.com/example/vocapp/internal/clock"
	"github.com/example/vocapp/internal/logger"
	"github.com/example/vocapp/pkg/models"
)

// Store is the part of the word store a review needs.
type Store interface {
	HasDue(ctx context.Context, learnerID int64, now time.Time) (bool, error)
	ListDue(ctx context.Context, learnerID int64, now time.Time) ([]models.Word, error)
	ApplyOutcome(ctx context.Context, learnerID int64, word string, correct bool, now time.Time) (*models.Word, error)
}

// Presenter asks the learner to recall one word and reports whether the
// answer was right.
type Presenter interface {
	Prompt(ctx context.Context, word models.Word, position, total int) (bool, error)
}

// Outcome is the result of recording one answer. Err holds per-word
// failures such as a word deleted mid-session.
type Outcome struct {
	Word    string
	Correct bool
	Result  *models.Word
	Err     error
}

// Session handles due-word review for one learner at a time
type Session struct {
	store Store
	clock clock.Clock
	log   *logger.Logger
}

// NewSession creates a new review session
func NewSession(store Store, clk clock.Clock, log *logger.Logger) *Session {
	return &Session{
		store: store,
		clock: clk,
		log:   log.With("component", "review"),
	}
}

// NeedsRevision reports whether the learner has anything due right now.
func (s *Session) NeedsRevision(ctx context.Context, learnerID int64) (bool, error) {
	return s.store.HasDue(ctx, learnerID, s.clock.Now())
}

// Due returns the learner's due words, oldest due first.
func (s *Session) Due(ctx context.Context, learnerID int64) ([]models.Word, error) {
	words, err := s.store.ListDue(ctx, learnerID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	sort.SliceStable(words, func(i, j int) bool {
		a, b := words[i], words[j]
		if !a.NextDueAt.Equal(b.NextDueAt) {
			return a.NextDueAt.Before(b.NextDueAt)
		}
		if !a.LastReviewedAt.Equal(b.LastReviewedAt) {
			return a.LastReviewedAt.Before(b.LastReviewedAt)
		}
		return a.Word < b.Word
	})
	return words, nil
}

// Record applies one answer. Only infrastructure failures are returned as
// errors; a missing word is reported in the Outcome.
func (s *Session) Record(ctx context.Context, learnerID int64, word string, correct bool) (Outcome, error) {
	out := Outcome{Word: word, Correct: correct}
	result, err := s.store.ApplyOutcome(ctx, learnerID, word, correct, s.clock.Now())
	switch {
	case err == nil:
		out.Result = result
		s.log.Debug("outcome recorded", "learner_id", learnerID, "word", result.Word, "correct", correct, "box", result.BoxLevel)
	case apperr.Is(err, apperr.KindNotFound), apperr.Is(err, apperr.KindInputValidation):
		out.Err = err
		s.log.Info("outcome skipped", "learner_id", learnerID, "word", word, "error", err)
	default:
		return out, err
	}
	return out, nil
}

// Run walks the learner through every word due at the start of the run.
// It stops at the first presenter error and returns what was recorded.
func (s *Session) Run(ctx context.Context, learnerID int64, p Presenter) ([]Outcome, error) {
	words, err := s.Due(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(words))
	for i, w := range words {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		correct, err := p.Prompt(ctx, w, i+1, len(words))
		if err != nil {
			return outcomes, err
		}
		out, err := s.Record(ctx, learnerID, w.Word, correct)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}

	s.log.Info("review finished", "learner_id", learnerID, "reviewed", len(outcomes))
	return outcomes, nil
}
