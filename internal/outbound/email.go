// internal/outbound/email.go
package outbound

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/draftloop/outreach-backend/internal/config"
)

// SMTPTransmitter sends email through the configured SMTP relay.
type SMTPTransmitter struct {
	dialer   *gomail.Dialer
	fromName string
	fromAddr string
}

func NewSMTPTransmitter(cfg config.SMTPConfig) *SMTPTransmitter {
	return &SMTPTransmitter{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		fromName: cfg.FromName,
		fromAddr: cfg.FromAddr,
	}
}

// HTMLBody converts drafted plain text to the HTML body the relay expects.
func HTMLBody(content string) string {
	return strings.ReplaceAll(content, "\n", "<br>")
}

// Send dispatches one email. gomail has no context support, so the dial+send
// runs in a goroutine and the wait is bounded by ctx; an abandoned send may
// still reach the relay, which is within the accepted at-least-once window.
func (t *SMTPTransmitter) Send(ctx context.Context, to, subject, htmlBody, threadID string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", t.fromAddr, t.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	if threadID != "" {
		ref := threadID
		if !strings.HasPrefix(ref, "<") {
			ref = "<" + ref + ">"
		}
		m.SetHeader("In-Reply-To", ref)
		m.SetHeader("References", ref)
	}
	m.SetBody("text/html", htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- t.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ EmailTransmitter = (*SMTPTransmitter)(nil)
