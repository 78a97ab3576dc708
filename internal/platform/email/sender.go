// Package email implements the outbound mail collaborator used to deliver
// one-time verification codes. Failures are reported immediately to the
// caller; there is no retry loop here.
package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/novaapay/banking-core/internal/config"

	"log/slog"
)

// Sender delivers mail via SMTP
type Sender struct {
	cfg    *config.SMTPConfig
	logger *slog.Logger
}

// NewSender creates a new SMTP sender
func NewSender(cfg *config.SMTPConfig, logger *slog.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendVerificationCode emails a one-time login code to the recipient
func (s *Sender) SendVerificationCode(to, code string) error {
	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", s.cfg.SenderName, s.cfg.SenderEmail)
	e.To = []string{to}
	e.Subject = "Your Login Verification Code"

	e.Text = []byte(fmt.Sprintf(
		"Your one-time verification code is: %s\n\n"+
			"This code will expire in 10 minutes. Do not share this code with anyone.\n",
		code,
	))
	e.HTML = []byte(fmt.Sprintf(
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1>%s</h1>
  <p>Your one-time verification code is:</p>
  <div style="font-size: 36px; font-weight: bold; letter-spacing: 8px;">%s</div>
  <p>This code will expire in 10 minutes. Do not share this code with anyone.</p>
</div>`,
		s.cfg.SenderName, code,
	))

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := e.Send(addr, auth); err != nil {
		s.logger.Error("Failed to send verification code", "to", to, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Verification code sent", "to", to)
	return nil
}
