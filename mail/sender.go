package mail

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/stayloop/booking-service/config"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers one outbound email per call. Implementations must be
// safe to retry: re-sending a message causes at most a duplicate email,
// never state corruption.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.FromAddress,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return s.dialer.DialAndSend(m)
}
