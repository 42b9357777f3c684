package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/example/vocapp/internal/config"
	"github.com/example/vocapp/pkg/models"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email sends reminders to the learner's username, which is their address.
type Email struct {
	addr     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

func NewEmail(cfg config.SMTP) *Email {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Email{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from:     from,
		auth:     auth,
		sendMail: smtp.SendMail,
	}
}

func (e *Email) NotifyDue(ctx context.Context, learner models.Learner, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.sendMail(e.addr, e.auth, e.from, []string{learner.Username}, e.message(learner.Username, count)); err != nil {
		return errors.Wrapf(err, "failed to email learner %d", learner.ID)
	}
	return nil
}

func (e *Email) message(to string, count int) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Time to revise your words\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(ReminderText(count))
	b.WriteString("\r\n")
	return []byte(b.String())
}
