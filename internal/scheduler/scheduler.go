package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/vocapp/internal/clock"
	"github.com/example/vocapp/internal/config"
	"github.com/example/vocapp/internal/logger"
	"github.com/example/vocapp/internal/notify"
	"github.com/example/vocapp/pkg/models"
)

// LearnerLister returns the learners who opted in to reminders.
type LearnerLister interface {
	ListForNotification(ctx context.Context) ([]models.Learner, error)
}

// DueCounter counts a learner's due words.
type DueCounter interface {
	CountDue(ctx context.Context, learnerID int64, now time.Time) (int, error)
}

// Scheduler manages the periodic reminder sweep. It only reads due state.
type Scheduler struct {
	scheduler *gocron.Scheduler
	learners  LearnerLister
	words     DueCounter
	notifier  notify.Notifier
	clock     clock.Clock
	cfg       config.Scheduler
	log       *logger.Logger
	ctx       context.Context
}

// New creates a new scheduler instance
func New(cfg config.Scheduler, learners LearnerLister, words DueCounter, notifier notify.Notifier, clk clock.Clock, log *logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		learners:  learners,
		words:     words,
		notifier:  notifier,
		clock:     clk,
		cfg:       cfg,
		log:       log.With("component", "scheduler"),
		ctx:       context.Background(),
	}
}

// Start schedules the sweep every configured interval and returns at once.
// Sweeps run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx
	if _, err := s.scheduler.Every(s.cfg.Interval).Do(s.sweep); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.log.Info("reminder sweep scheduled", "interval", s.cfg.Interval.String(), "start_hour", s.cfg.StartHour, "end_hour", s.cfg.EndHour)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sweep() {
	if _, err := s.RunOnce(s.ctx); err != nil {
		s.log.Error("reminder sweep failed", "error", err)
	}
}

// InWindow reports whether hour lies within the notification hours,
// both ends included. A window whose start is after its end wraps midnight.
func (s *Scheduler) InWindow(hour int) bool {
	start, end := s.cfg.StartHour, s.cfg.EndHour
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}

// RunOnce performs one sweep and returns how many learners were notified.
// Outside the notification hours it does nothing. Per-learner failures are
// logged and skipped.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	now := s.clock.Now()
	if !s.InWindow(now.Hour()) {
		s.log.Debug("outside notification hours, skipping reminders", "hour", now.Hour())
		return 0, nil
	}

	learners, err := s.learners.ListForNotification(ctx)
	if err != nil {
		return 0, err
	}

	notified := 0
	for _, learner := range learners {
		if err := ctx.Err(); err != nil {
			return notified, err
		}
		sent, err := s.notifyLearner(ctx, learner, now)
		if err != nil {
			s.log.Warn("failed to remind learner", "learner_id", learner.ID, "error", err)
			continue
		}
		if sent {
			notified++
		}
	}
	s.log.Info("reminder sweep finished", "candidates", len(learners), "notified", notified)
	return notified, nil
}

// RunManualCheck reminds one learner right away, ignoring the window.
func (s *Scheduler) RunManualCheck(ctx context.Context, learner models.Learner) (bool, error) {
	return s.notifyLearner(ctx, learner, s.clock.Now())
}

func (s *Scheduler) notifyLearner(ctx context.Context, learner models.Learner, now time.Time) (bool, error) {
	count, err := s.words.CountDue(ctx, learner.ID, now)
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	if err := s.notifier.NotifyDue(ctx, learner, count); err != nil {
		return false, err
	}
	return true, nil
}
