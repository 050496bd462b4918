// Package notify delivers order-ready messages to customers over SMTP.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boba-pos/api/internal/config"
	"github.com/wneessen/go-mail"
)

var (
	// ErrNotConfigured means the relay host or credentials are missing.
	ErrNotConfigured = errors.New("smtp credentials not configured")
	// ErrNoSender means the relay is reachable but no From address is set.
	ErrNoSender = errors.New("smtp sender address not configured")
)

const sendTimeout = 15 * time.Second

// Mailer sends order-ready notifications through the configured relay.
type Mailer struct {
	cfg  config.SMTP
	send func(ctx context.Context, msg *mail.Msg) error
}

func NewMailer(cfg config.SMTP) *Mailer {
	m := &Mailer{cfg: cfg}
	m.send = m.dialAndSend
	return m
}

// CheckCredentials reports ErrNotConfigured when the relay cannot be used at all.
func (m *Mailer) CheckCredentials() error {
	if !m.cfg.HasCredentials() {
		return ErrNotConfigured
	}
	return nil
}

// SendOrderReady tells the customer their order can be picked up.
func (m *Mailer) SendOrderReady(ctx context.Context, to string, orderID int32) error {
	if err := m.CheckCredentials(); err != nil {
		return err
	}
	if m.cfg.From == "" {
		return ErrNoSender
	}
	msg, err := m.orderReadyMessage(to, orderID)
	if err != nil {
		return err
	}
	return m.send(ctx, msg)
}

func (m *Mailer) orderReadyMessage(to string, orderID int32) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set to %q: %w", to, err)
	}
	msg.Subject(fmt.Sprintf("Your order #%d is ready", orderID))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hi!\n\nYour order #%d is ready for pickup at the counter.\n\nThanks for stopping by.\n", orderID))
	return msg, nil
}

func (m *Mailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(sendTimeout),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
