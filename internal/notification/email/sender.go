// Package email delivers notification messages over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"summit/internal/notification"
	"summit/internal/platform/config"
)

// Sender sends email through a single SMTP endpoint. It holds one go-mail
// client; the client dials per send, so Sender is safe for concurrent use.
type Sender struct {
	client *mail.Client
	from   string
}

// NewSender builds a Sender from SMTP configuration. With DisableAuth set
// the client skips SMTP AUTH, which local catchers like mailpit expect.
func NewSender(cfg config.SMTPConfig) (*Sender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if !cfg.DisableAuth {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &Sender{client: client, from: cfg.From}, nil
}

// Send delivers a single message, honoring ctx for dial and send deadlines.
func (s *Sender) Send(ctx context.Context, msg notification.Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	for _, att := range msg.Attachments {
		if err := m.AttachReader(att.Filename, bytes.NewReader(att.Content)); err != nil {
			return fmt.Errorf("attach %s: %w", att.Filename, err)
		}
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	return nil
}
