package users

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"plagiarism-backend/internal/shared/telemetry"
)

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Send delivers one message. Uses PLAIN auth when credentials are configured.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.Host == "" || m.From == "" {
		return fmt.Errorf("smtp mailer not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := m.Host + ":" + m.Port
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg.String()))
}

// LogMailer writes mail to the log instead of sending it. Used in dev when no
// SMTP relay is configured.
type LogMailer struct{}

// Send logs the message.
func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	telemetry.Info("mail (not sent, no smtp configured)", map[string]any{
		"to":      to,
		"subject": subject,
		"body":    body,
	})
	return nil
}
