// internal/app/system/mailer/mailer.go
package mailer

import (
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Email is one outbound message. Reminder builders fill everything except
// To, which the caller sets per recipient.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// Mailer sends email over SMTP. Safe for concurrent use; each Send dials a
// fresh connection, which is fine at reminder-job volumes.
type Mailer struct {
	cfg Config
	log *zap.Logger
}

// New creates a Mailer with the given SMTP configuration.
func New(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: logger}
}

// Send delivers one email. Returns an error for the caller to record; it
// never retries.
func (m *Mailer) Send(e Email) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(e.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", e.To, err)
	}
	msg.Subject(e.Subject)
	msg.SetBodyString(mail.TypeTextPlain, e.TextBody)
	if e.HTMLBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, e.HTMLBody)
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Pass),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("send to %q: %w", e.To, err)
	}
	m.log.Debug("email sent", zap.String("to", e.To), zap.String("subject", e.Subject))
	return nil
}
