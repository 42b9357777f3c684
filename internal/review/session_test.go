package review

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocapp/internal/apperr"
	"github.com/example/vocapp/internal/clock"
	"github.com/example/vocapp/internal/logger"
	"github.com/example/vocapp/internal/spaced_repetition"
	"github.com/example/vocapp/pkg/models"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu     sync.Mutex
	ladder spaced_repetition.Ladder
	words  map[string]*models.Word
	failOn string
}

func newFakeStore(words ...models.Word) *fakeStore {
	s := &fakeStore{ladder: spaced_repetition.DefaultLadder(), words: map[string]*models.Word{}}
	for i := range words {
		w := words[i]
		s.words[w.Word] = &w
	}
	return s
}

func (s *fakeStore) HasDue(ctx context.Context, learnerID int64, now time.Time) (bool, error) {
	due, err := s.ListDue(ctx, learnerID, now)
	return len(due) > 0, err
}

func (s *fakeStore) ListDue(_ context.Context, learnerID int64, now time.Time) ([]models.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []models.Word
	for _, w := range s.words {
		if w.LearnerID == learnerID && w.IsDue(now) {
			due = append(due, *w)
		}
	}
	return due, nil
}

func (s *fakeStore) ApplyOutcome(_ context.Context, learnerID int64, word string, correct bool, now time.Time) (*models.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if word == s.failOn {
		return nil, errors.New("database is locked")
	}
	w, ok := s.words[word]
	if !ok || w.LearnerID != learnerID {
		return nil, apperr.NotFound("'%s' is not in your list", word)
	}
	r, err := s.ladder.Advance(w.BoxLevel, correct, now)
	if err != nil {
		return nil, err
	}
	w.BoxLevel, w.LastReviewedAt, w.NextDueAt = r.Level, r.LastReviewed, r.NextDue
	cp := *w
	return &cp, nil
}

func (s *fakeStore) remove(word string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.words, word)
}

func word(name string, level int, lastReviewed, nextDue time.Time) models.Word {
	return models.Word{
		LearnerID:      1,
		Word:           name,
		Definition:     models.Definition{"Noun": {"a " + strings.ToLower(name)}},
		BoxLevel:       level,
		LastReviewedAt: lastReviewed,
		NextDueAt:      nextDue,
	}
}

// scriptedPresenter answers from a fixed list and runs hook before each prompt.
type scriptedPresenter struct {
	answers []bool
	seen    []string
	hook    func(models.Word)
}

func (p *scriptedPresenter) Prompt(_ context.Context, w models.Word, position, total int) (bool, error) {
	if p.hook != nil {
		p.hook(w)
	}
	if len(p.seen) >= len(p.answers) {
		return false, io.EOF
	}
	p.seen = append(p.seen, w.Word)
	return p.answers[len(p.seen)-1], nil
}

func newSession(store Store) (*Session, *clock.Manual) {
	clk := clock.NewManual(t0)
	return NewSession(store, clk, logger.Nop()), clk
}

func TestDueOrdering(t *testing.T) {
	store := newFakeStore(
		word("Charlie", 1, t0.Add(-48*time.Hour), t0.Add(-time.Hour)),
		word("Bravo", 1, t0.Add(-72*time.Hour), t0.Add(-2*time.Hour)),
		word("Alpha", 1, t0.Add(-72*time.Hour), t0.Add(-2*time.Hour)),
		word("Delta", 2, t0.Add(-96*time.Hour), t0.Add(-2*time.Hour)),
		word("Later", 1, t0, t0.Add(time.Hour)),
	)
	s, _ := newSession(store)

	due, err := s.Due(context.Background(), 1)
	require.NoError(t, err)

	var names []string
	for _, w := range due {
		names = append(names, w.Word)
	}
	assert.Equal(t, []string{"Delta", "Alpha", "Bravo", "Charlie"}, names)

	needs, err := s.NeedsRevision(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, needs)

	needs, err = s.NeedsRevision(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestRecord(t *testing.T) {
	store := newFakeStore(word("Hello", 3, t0.Add(-72*time.Hour), t0.Add(-time.Hour)))
	s, _ := newSession(store)
	ctx := context.Background()

	out, err := s.Record(ctx, 1, "Hello", false)
	require.NoError(t, err)
	require.NoError(t, out.Err)
	assert.Equal(t, 2, out.Result.BoxLevel)
	assert.Equal(t, t0.Add(2*24*time.Hour), out.Result.NextDueAt)

	out, err = s.Record(ctx, 1, "Missing", true)
	require.NoError(t, err)
	assert.True(t, apperr.Is(out.Err, apperr.KindNotFound))
	assert.Nil(t, out.Result)

	store.failOn = "Hello"
	_, err = s.Record(ctx, 1, "Hello", true)
	assert.EqualError(t, err, "database is locked")
}

func TestRunRecordsInDueOrder(t *testing.T) {
	store := newFakeStore(
		word("Second", 1, t0.Add(-48*time.Hour), t0.Add(-time.Hour)),
		word("First", 4, t0.Add(-96*time.Hour), t0.Add(-2*time.Hour)),
	)
	s, _ := newSession(store)
	p := &scriptedPresenter{answers: []bool{true, false}}

	outcomes, err := s.Run(context.Background(), 1, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second"}, p.seen)
	require.Len(t, outcomes, 2)

	assert.Equal(t, 5, outcomes[0].Result.BoxLevel)
	assert.Equal(t, 1, outcomes[1].Result.BoxLevel)

	needs, err := s.NeedsRevision(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestRunReportsWordDeletedMidSession(t *testing.T) {
	store := newFakeStore(
		word("Keep", 1, t0.Add(-72*time.Hour), t0.Add(-2*time.Hour)),
		word("Gone", 1, t0.Add(-48*time.Hour), t0.Add(-time.Hour)),
	)
	s, _ := newSession(store)
	p := &scriptedPresenter{answers: []bool{true, true}}
	p.hook = func(w models.Word) {
		if w.Word == "Keep" {
			store.remove("Gone")
		}
	}

	outcomes, err := s.Run(context.Background(), 1, p)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.NoError(t, outcomes[0].Err)
	assert.True(t, apperr.Is(outcomes[1].Err, apperr.KindNotFound))
}

func TestRunStopsOnPresenterError(t *testing.T) {
	store := newFakeStore(
		word("One", 1, t0.Add(-72*time.Hour), t0.Add(-3*time.Hour)),
		word("Two", 1, t0.Add(-72*time.Hour), t0.Add(-2*time.Hour)),
	)
	s, _ := newSession(store)

	outcomes, err := s.Run(context.Background(), 1, &scriptedPresenter{answers: []bool{true}})
	assert.ErrorIs(t, err, io.EOF)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "One", outcomes[0].Word)

	// Nothing carries over: the next run starts from what is still due.
	p := &scriptedPresenter{answers: []bool{true}}
	outcomes, err = s.Run(context.Background(), 1, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"Two"}, p.seen)
	assert.Len(t, outcomes, 1)
}
