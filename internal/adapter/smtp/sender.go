// Package smtp delivers notification emails over SMTP.
//
// The sender is deliberately dumb: one message, one SendMail call. Retry and
// failure policy live in the notification dispatcher, which treats delivery
// as best-effort.
package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/adproofhq/adproof-backend/internal/config"
)

// Sender sends email via a configured SMTP relay. A Sender built from a
// config with an empty host is disabled and rejects Send with an error.
type Sender struct {
	addr     string
	host     string
	username string
	password string
	from     string
	enabled  bool
}

// New creates a Sender from config. Host left empty disables delivery.
func New(cfg config.EmailConfig) *Sender {
	return &Sender{
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		host:     cfg.Host,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		enabled:  cfg.Host != "" && cfg.Port > 0,
	}
}

// Enabled reports whether the sender has a configured relay.
func (s *Sender) Enabled() bool {
	return s.enabled
}

// Send delivers one HTML email. The context is checked before dialing;
// net/smtp itself does not take a context.
func (s *Sender) Send(ctx context.Context, to, subject, html string) error {
	if !s.enabled {
		return fmt.Errorf("smtp sender is not configured")
	}
	if !strings.Contains(to, "@") {
		return fmt.Errorf("invalid recipient address %q", to)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(s.addr, auth, s.from, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	return nil
}
