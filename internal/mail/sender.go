package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/advancetodo/api/internal/config"
)

// ErrDisabled is returned by NoopSender. Callers treat it as "skipped", not
// as a delivery failure.
var ErrDisabled = errors.New("mail sending disabled: credentials not configured")

// Sender delivers one message. Implementations must honour ctx cancellation
// and must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// NoopSender discards every message and warns once per process.
type NoopSender struct {
	logger *slog.Logger
	once   sync.Once
}

// NewNoopSender creates a NoopSender. If logger is nil, a default logger will be used.
func NewNoopSender(logger *slog.Logger) *NoopSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopSender{logger: logger.With(slog.String("component", "mail"))}
}

// Send implements Sender. It always returns ErrDisabled.
func (s *NoopSender) Send(ctx context.Context, _ Message) error {
	s.once.Do(func() {
		s.logger.WarnContext(ctx, "mail credentials not configured, reminders will not be sent")
	})
	return ErrDisabled
}

// New picks the transport described by cfg. Missing credentials yield a
// NoopSender rather than an error so scheduling keeps working.
func New(ctx context.Context, cfg config.MailConfig, logger *slog.Logger) (Sender, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled() {
		return NewNoopSender(logger), nil
	}

	switch cfg.Transport {
	case config.TransportGmail:
		return NewGmailSender(ctx, cfg, logger)
	case config.TransportSMTP, "":
		return NewSMTPSender(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}
