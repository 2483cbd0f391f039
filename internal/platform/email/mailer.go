package email

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"

	"authbase/internal/platform/config"
)

// Sender delivers a plain-text message. Implementations may block; callers on
// the request path must go through Dispatch instead of calling Send directly.
type Sender interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.FromName, m.cfg.FromAddress, to, subject, body)

	return smtp.SendMail(addr, auth, m.cfg.FromAddress, []string{to}, []byte(msg))
}

// Dispatch sends asynchronously. Delivery failure is logged and swallowed:
// signup, OTP regeneration and the rest succeed even when the mail does not.
func Dispatch(sender Sender, to, subject, body string) {
	go func() {
		if err := sender.Send(to, subject, body); err != nil {
			log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("failed to send email")
		}
	}()
}
