package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/boba-pos/api/internal/config"
	"github.com/wneessen/go-mail"
)

func fullSMTP() config.SMTP {
	return config.SMTP{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "shop",
		Password: "secret",
		From:     "orders@example.com",
	}
}

func TestCheckCredentials(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SMTP
		wantErr error
	}{
		{"complete", fullSMTP(), nil},
		{"no host", config.SMTP{Username: "u", Password: "p"}, ErrNotConfigured},
		{"no password", config.SMTP{Host: "h", Username: "u"}, ErrNotConfigured},
		{"no sender is still reachable", config.SMTP{Host: "h", Username: "u", Password: "p"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewMailer(tt.cfg).CheckCredentials()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSendOrderReady(t *testing.T) {
	m := NewMailer(fullSMTP())
	var sent *mail.Msg
	m.send = func(ctx context.Context, msg *mail.Msg) error {
		sent = msg
		return nil
	}

	if err := m.SendOrderReady(context.Background(), "guest@example.com", 42); err != nil {
		t.Fatalf("SendOrderReady: %v", err)
	}
	if sent == nil {
		t.Fatal("expected message to be sent")
	}
	rcpts, err := sent.GetRecipients()
	if err != nil {
		t.Fatalf("recipients: %v", err)
	}
	if len(rcpts) != 1 || rcpts[0] != "guest@example.com" {
		t.Errorf("recipients: got %v", rcpts)
	}
	subject := sent.GetGenHeader(mail.HeaderSubject)
	if len(subject) != 1 || !strings.Contains(subject[0], "#42") {
		t.Errorf("subject: got %v", subject)
	}
}

func TestSendOrderReady_NoSender(t *testing.T) {
	cfg := fullSMTP()
	cfg.From = ""
	m := NewMailer(cfg)
	m.send = func(ctx context.Context, msg *mail.Msg) error {
		t.Fatal("should not send without a sender")
		return nil
	}

	err := m.SendOrderReady(context.Background(), "guest@example.com", 1)
	if !errors.Is(err, ErrNoSender) {
		t.Fatalf("expected ErrNoSender, got %v", err)
	}
}

func TestSendOrderReady_BadAddress(t *testing.T) {
	m := NewMailer(fullSMTP())
	m.send = func(ctx context.Context, msg *mail.Msg) error { return nil }

	if err := m.SendOrderReady(context.Background(), "not an address", 1); err == nil {
		t.Fatal("expected error for malformed recipient")
	}
}

func TestSendOrderReady_RelayFailure(t *testing.T) {
	m := NewMailer(fullSMTP())
	m.send = func(ctx context.Context, msg *mail.Msg) error { return errors.New("connection refused") }

	if err := m.SendOrderReady(context.Background(), "guest@example.com", 1); err == nil {
		t.Fatal("expected relay error")
	}
}
