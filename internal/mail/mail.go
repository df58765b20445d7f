// Package mail delivers transactional mail (password-reset OTPs).
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// SMTPConfig configures the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// SMTPMailer sends mail through a plain-auth SMTP server.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers a single plain-text message.
func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// Noop discards mail. It logs the recipient so local development can still
// observe OTP flows without an SMTP server.
type Noop struct{}

// Send logs and discards the message.
func (Noop) Send(ctx context.Context, to, subject, _ string) error {
	zctx.From(ctx).Info("mail discarded (no SMTP configured)",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
