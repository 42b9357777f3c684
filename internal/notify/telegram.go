package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/example/vocapp/internal/logger"
	"github.com/example/vocapp/pkg/models"
)

// Sender is satisfied by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends reminders to learners who linked a chat.
type Telegram struct {
	api Sender
	log *logger.Logger
}

// NewTelegram connects to the Bot API with token.
func NewTelegram(token string, log *logger.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}
	log.Info("authorized on telegram", "account", api.Self.UserName)
	return NewTelegramWithSender(api, log), nil
}

func NewTelegramWithSender(api Sender, log *logger.Logger) *Telegram {
	return &Telegram{api: api, log: log.With("component", "notify.telegram")}
}

func (t *Telegram) NotifyDue(ctx context.Context, learner models.Learner, count int) error {
	if learner.TelegramChatID == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(*learner.TelegramChatID, ReminderText(count))
	if _, err := t.api.Send(msg); err != nil {
		return errors.Wrapf(err, "failed to send telegram reminder to learner %d", learner.ID)
	}
	t.log.Debug("reminder sent", "learner_id", learner.ID, "due", count)
	return nil
}
