package service

import (
	"context"
	"fmt"

	mail "github.com/go-mail/mail/v2"
	"go.uber.org/zap"
)

// Mailer sends transactional mail over SMTP with mandatory STARTTLS.
type Mailer struct {
	dialer *mail.Dialer
	from   string
	log    *zap.Logger
}

func NewMailer(host string, port int, username, password, from string, log *zap.Logger) *Mailer {
	d := mail.NewDialer(host, port, username, password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	if from == "" {
		from = username
	}
	return &Mailer{dialer: d, from: from, log: log}
}

// SendPasswordReset mails the reset link to the given address.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := PasswordResetMessage(m.from, to, name, link)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}
	m.log.Info("password reset mail sent", zap.String("to", to))
	return nil
}

// PasswordResetMessage builds the reset mail.
func PasswordResetMessage(from, to, name, link string) *mail.Message {
	if name == "" {
		name = "reader"
	}
	msg := mail.NewMessage(mail.SetEncoding(mail.Unencoded))
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Reset your BookReflect password")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nSomeone asked to reset the password for this account. "+
			"Open the link below within one hour to choose a new one:\n\n%s\n\n"+
			"If it wasn't you, ignore this mail.\n", name, link))
	return msg
}

// LogMailer stands in for Mailer when SMTP isn't configured: it logs the link instead of sending it.
type LogMailer struct {
	Log *zap.Logger
}

func (m LogMailer) SendPasswordReset(_ context.Context, to, _, link string) error {
	m.Log.Warn("SMTP not configured; password reset link not mailed", zap.String("to", to), zap.String("link", link))
	return nil
}
