// Package mailer delivers the one-time sign-in code by email.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/onehope/resources-api/internal/config"
	"github.com/onehope/resources-api/internal/domain"
)

// Mailer sends sign-in code emails. The auth flow treats a send failure as
// fatal for the issue call: a code the user never received must not stay live.
type Mailer interface {
	SendCode(to, code string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(cfg *config.Config) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

func (m *smtpMailer) SendCode(to, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your One Hope Resources sign-in code")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your one-time sign-in code is: %s\n\nThis code expires in 10 minutes. If you didn't request this, you can ignore this email.\n\n— One Hope Resources\n", code))
	msg.AddAlternative("text/html", fmt.Sprintf(
		`<p>Your one-time sign-in code is: <strong>%s</strong></p>
<p>This code expires in 10 minutes. If you didn't request this, you can ignore this email.</p>
<p>— One Hope Resources</p>`, code))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send sign-in code: %w: %v", domain.ErrUnavailable, err)
	}
	return nil
}
