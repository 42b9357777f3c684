package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/vocapp/internal/logger"
	"github.com/example/vocapp/pkg/models"
)

// Notifier delivers a "you have words to revise" reminder.
type Notifier interface {
	NotifyDue(ctx context.Context, learner models.Learner, count int) error
}

// ReminderText is the body shared by every channel.
func ReminderText(count int) string {
	noun := "words"
	if count == 1 {
		noun = "word"
	}
	return fmt.Sprintf("You have %d %s due for revision. Log in to review them before they slip away!", count, noun)
}

// Log writes reminders to the service log. It is the fallback when no
// delivery channel is configured.
type Log struct {
	log *logger.Logger
}

func NewLog(log *logger.Logger) *Log {
	return &Log{log: log.With("component", "notify.log")}
}

func (l *Log) NotifyDue(_ context.Context, learner models.Learner, count int) error {
	l.log.Info("reminder", "learner_id", learner.ID, "username", learner.Username, "due", count)
	return nil
}

// Multi fans a reminder out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) NotifyDue(ctx context.Context, learner models.Learner, count int) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyDue(ctx, learner, count); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
