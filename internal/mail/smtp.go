package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/advancetodo/api/internal/config"
)

// SMTPSender delivers mail through an SMTP relay, upgrading to TLS when the
// server offers STARTTLS.
type SMTPSender struct {
	host     string
	addr     string
	from     string
	fromName string
	auth     smtp.Auth
	logger   *slog.Logger

	// dial opens the transport connection; replaced in tests.
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
	now  func() time.Time
}

// NewSMTPSender creates an SMTPSender from cfg.
func NewSMTPSender(cfg config.MailConfig, logger *slog.Logger) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("smtp username and password are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	port := cfg.Port
	if port == 0 {
		port = 587
	}

	d := &net.Dialer{Timeout: 10 * time.Second}
	return &SMTPSender{
		host:     cfg.Host,
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		from:     cfg.Username,
		fromName: cfg.FromName,
		auth:     smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
		logger:   logger.With(slog.String("component", "mail"), slog.String("transport", "smtp")),
		dial:     d.DialContext,
		now:      time.Now,
	}, nil
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	raw, err := BuildRFC822(s.fromName, s.from, msg, s.now())
	if err != nil {
		return err
	}

	conn, err := s.dial(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// Unblock any in-flight read or write when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return s.wrap(ctx, "greeting", err)
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}); err != nil {
			return s.wrap(ctx, "starttls", err)
		}
	}
	if ok, _ := c.Extension("AUTH"); ok {
		if err := c.Auth(s.auth); err != nil {
			return s.wrap(ctx, "auth", err)
		}
	}
	if err := c.Mail(s.from); err != nil {
		return s.wrap(ctx, "mail from", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return s.wrap(ctx, "rcpt to", err)
	}
	w, err := c.Data()
	if err != nil {
		return s.wrap(ctx, "data", err)
	}
	if _, err := w.Write(raw); err != nil {
		return s.wrap(ctx, "data", err)
	}
	if err := w.Close(); err != nil {
		return s.wrap(ctx, "data", err)
	}
	if err := c.Quit(); err != nil {
		s.logger.DebugContext(ctx, "smtp quit failed after delivery", slog.String("error", err.Error()))
	}
	return nil
}

// wrap prefers the context error when cancellation caused the failure.
func (s *SMTPSender) wrap(ctx context.Context, stage string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("smtp %s: %w", stage, ctxErr)
	}
	return fmt.Errorf("smtp %s: %w", stage, err)
}
