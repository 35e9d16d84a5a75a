package utils

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/avelar-dev/go-tours/models"
)

// Mailer delivers transactional mail. Implementations must return an error on
// delivery failure so callers can roll back dependent state.
type Mailer interface {
	SendPasswordReset(ctx context.Context, user *models.User, resetURL string) error
}

// SMTPMailer sends plain-text mail over SMTP with PLAIN auth.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, user *models.User, resetURL string) error {
	subject := "Your password reset token (valid for 10 minutes)"
	body := fmt.Sprintf(
		"Hi %s,\n\nForgot your password? Submit a PATCH request with your new password to:\n\n%s\n\nIf you didn't forget your password, please ignore this email.\n",
		user.Name, resetURL,
	)
	return m.send(user.Email, subject, body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	if m.Host == "" || m.Port == "" || m.User == "" || m.Pass == "" {
		return fmt.Errorf("smtp not configured")
	}

	addr := m.Host + ":" + m.Port

	msg := "From: " + m.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body + "\r\n"

	// Envelope sender must be the authenticated account; m.From is only the
	// display header.
	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	return smtp.SendMail(addr, auth, m.User, []string{to}, []byte(msg))
}
