// Package mail delivers transactional email for the auth service. Only the
// password reset flow sends mail today.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/aura-clinic/aura/pkg/slogx"
)

// SMTPMailer sends mail through a plain SMTP relay with optional AUTH.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SendPasswordReset emails the reset link to the account holder.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, fullName, resetURL string) error {
	name := strings.TrimSpace(fullName)
	if name == "" {
		name = "there"
	}

	subject := "Reset your AURA portal password"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"We received a request to reset your AURA portal password. Open the "+
			"link below to choose a new one. The link expires in 30 minutes.\r\n\r\n"+
			"%s\r\n\r\n"+
			"If you did not request this, you can safely ignore this email.\r\n",
		name, resetURL)

	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}

	slogx.FromContext(ctx).Info("password reset email sent")
	return nil
}

// LogMailer writes the reset link to the log instead of sending mail. It is
// the default when no SMTP relay is configured, which keeps local
// development working without one.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, to, fullName, resetURL string) error {
	slogx.FromContext(ctx).Info("password reset link (mail disabled)",
		"to", to,
		"reset_url", resetURL,
	)
	return nil
}
