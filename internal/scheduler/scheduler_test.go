package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocapp/internal/clock"
	"github.com/example/vocapp/internal/config"
	"github.com/example/vocapp/internal/logger"
	"github.com/example/vocapp/pkg/models"
)

type fakeLearners struct {
	learners []models.Learner
	err      error
}

func (f *fakeLearners) ListForNotification(context.Context) ([]models.Learner, error) {
	return f.learners, f.err
}

type fakeDue map[int64]int

func (f fakeDue) CountDue(_ context.Context, learnerID int64, _ time.Time) (int, error) {
	if n, ok := f[learnerID]; ok && n < 0 {
		return 0, errors.New("query failed")
	}
	return f[learnerID], nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	calls  map[int64]int
	failOn int64
}

func (r *recordingNotifier) NotifyDue(_ context.Context, learner models.Learner, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if learner.ID == r.failOn {
		return errors.New("delivery failed")
	}
	if r.calls == nil {
		r.calls = map[int64]int{}
	}
	r.calls[learner.ID] = count
	return nil
}

func (r *recordingNotifier) snapshot() map[int64]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[int64]int{}
	for k, v := range r.calls {
		out[k] = v
	}
	return out
}

func newTestScheduler(at time.Time, learners *fakeLearners, due fakeDue, n *recordingNotifier) *Scheduler {
	cfg := config.Scheduler{Interval: time.Hour, StartHour: 8, EndHour: 20}
	return New(cfg, learners, due, n, clock.NewManual(at), logger.Nop())
}

func TestRunOnceNotifiesLearnersWithDueWords(t *testing.T) {
	learners := &fakeLearners{learners: []models.Learner{{ID: 1}, {ID: 2}, {ID: 3}}}
	due := fakeDue{1: 4, 2: 0, 3: 1}
	n := &recordingNotifier{}
	s := newTestScheduler(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), learners, due, n)

	notified, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, notified)
	assert.Equal(t, map[int64]int{1: 4, 3: 1}, n.snapshot())
}

func TestRunOnceOutsideWindow(t *testing.T) {
	learners := &fakeLearners{learners: []models.Learner{{ID: 1}}}
	n := &recordingNotifier{}

	for _, hour := range []int{0, 7, 21, 23} {
		s := newTestScheduler(time.Date(2024, 5, 1, hour, 0, 0, 0, time.UTC), learners, fakeDue{1: 3}, n)
		notified, err := s.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Zero(t, notified, "hour %d", hour)
	}
	assert.Empty(t, n.snapshot())

	for _, hour := range []int{8, 20} {
		s := newTestScheduler(time.Date(2024, 5, 1, hour, 59, 0, 0, time.UTC), learners, fakeDue{1: 3}, n)
		notified, err := s.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, notified, "hour %d", hour)
	}
}

func TestInWindowWrapsMidnight(t *testing.T) {
	s := New(config.Scheduler{StartHour: 22, EndHour: 2}, nil, nil, nil, clock.System{}, logger.Nop())
	assert.True(t, s.InWindow(23))
	assert.True(t, s.InWindow(0))
	assert.True(t, s.InWindow(2))
	assert.False(t, s.InWindow(3))
	assert.False(t, s.InWindow(21))
}

func TestRunOnceSkipsFailingLearners(t *testing.T) {
	learners := &fakeLearners{learners: []models.Learner{{ID: 1}, {ID: 2}, {ID: 3}}}
	due := fakeDue{1: 2, 2: -1, 3: 5}
	n := &recordingNotifier{failOn: 1}
	s := newTestScheduler(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), learners, due, n)

	notified, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	assert.Equal(t, map[int64]int{3: 5}, n.snapshot())
}

func TestRunOnceListError(t *testing.T) {
	learners := &fakeLearners{err: errors.New("db down")}
	s := newTestScheduler(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), learners, fakeDue{}, &recordingNotifier{})

	_, err := s.RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestRunManualCheckIgnoresWindow(t *testing.T) {
	n := &recordingNotifier{}
	s := newTestScheduler(time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC), &fakeLearners{}, fakeDue{7: 2}, n)

	sent, err := s.RunManualCheck(context.Background(), models.Learner{ID: 7})
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = s.RunManualCheck(context.Background(), models.Learner{ID: 8})
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, map[int64]int{7: 2}, n.snapshot())
}

func TestStartRunsSweep(t *testing.T) {
	learners := &fakeLearners{learners: []models.Learner{{ID: 1}}}
	n := &recordingNotifier{}
	s := newTestScheduler(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), learners, fakeDue{1: 1}, n)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return n.snapshot()[1] == 1
	}, 2*time.Second, 10*time.Millisecond)
}
