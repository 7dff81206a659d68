package mocks

import (
	"context"
	"sync"

	"github.com/advancetodo/api/internal/mail"
)

// MockSender implements mail.Sender for testing and records every message
// it is asked to deliver.
type MockSender struct {
	// SendFn overrides the default behavior. It is called after the message
	// is recorded.
	SendFn func(ctx context.Context, msg mail.Message) error

	// Err is returned by default
	Err error

	mu   sync.Mutex
	sent []mail.Message
}

var _ mail.Sender = (*MockSender)(nil)

// Send implements mail.Sender
func (m *MockSender) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	if m.SendFn != nil {
		return m.SendFn(ctx, msg)
	}
	return m.Err
}

// Sent returns the messages passed to Send, in call order.
func (m *MockSender) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

// SentTo returns the messages addressed to to.
func (m *MockSender) SentTo(to string) []mail.Message {
	var out []mail.Message
	for _, msg := range m.Sent() {
		if msg.To == to {
			out = append(out, msg)
		}
	}
	return out
}
