package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocapp/internal/config"
	"github.com/example/vocapp/internal/logger"
	"github.com/example/vocapp/pkg/models"
)

func TestReminderText(t *testing.T) {
	assert.True(t, strings.HasPrefix(ReminderText(1), "You have 1 word due"))
	assert.True(t, strings.HasPrefix(ReminderText(3), "You have 3 words due"))
}

func TestEmail(t *testing.T) {
	e := NewEmail(config.SMTP{Host: "smtp.example.com", Port: 587, Username: "bot@example.com", Password: "pw"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	e.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		assert.NotNil(t, a)
		return nil
	}

	err := e.NotifyDue(context.Background(), models.Learner{ID: 1, Username: "ada@example.com"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "To: ada@example.com\r\n")
	assert.Contains(t, gotMsg, "You have 2 words due")

	e.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}
	err = e.NotifyDue(context.Background(), models.Learner{ID: 1, Username: "ada@example.com"}, 2)
	assert.ErrorContains(t, err, "connection refused")
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestTelegram(t *testing.T) {
	sender := &fakeSender{}
	tg := NewTelegramWithSender(sender, logger.Nop())
	ctx := context.Background()

	require.NoError(t, tg.NotifyDue(ctx, models.Learner{ID: 1}, 4))
	assert.Empty(t, sender.sent, "learners without a linked chat are skipped")

	chat := int64(99)
	require.NoError(t, tg.NotifyDue(ctx, models.Learner{ID: 2, TelegramChatID: &chat}, 4))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(99), sender.sent[0].ChatID)
	assert.Equal(t, ReminderText(4), sender.sent[0].Text)

	sender.err = errors.New("bot was blocked by the user")
	assert.Error(t, tg.NotifyDue(ctx, models.Learner{ID: 2, TelegramChatID: &chat}, 4))
}

type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) NotifyDue(context.Context, models.Learner, int) error {
	c.calls++
	return c.err
}

func TestMulti(t *testing.T) {
	ok := &countingNotifier{}
	failing := &countingNotifier{err: errors.New("smtp down")}
	m := Multi{failing, ok, NewLog(logger.Nop())}

	err := m.NotifyDue(context.Background(), models.Learner{ID: 1}, 1)
	assert.ErrorContains(t, err, "smtp down")
	assert.Equal(t, 1, ok.calls, "a failing channel does not stop the others")
	assert.Equal(t, 1, failing.calls)

	assert.NoError(t, Multi{ok}.NotifyDue(context.Background(), models.Learner{ID: 1}, 1))
}
