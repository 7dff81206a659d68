package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/advancetodo/api/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSender delivers mail through the Gmail REST API as the authorised
// account.
type GmailSender struct {
	svc      *gmail.Service
	from     string
	fromName string
	logger   *slog.Logger
	now      func() time.Time
}

// NewGmailSender builds a Gmail API client whose token source refreshes from
// the configured refresh token.
func NewGmailSender(ctx context.Context, cfg config.MailConfig, logger *slog.Logger) (*GmailSender, error) {
	if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" || cfg.GmailRefreshToken == "" {
		return nil, errors.New("gmail client id, client secret and refresh token are required")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GmailRefreshToken})

	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create gmail client: %w", err)
	}
	return newGmailSender(svc, cfg, logger), nil
}

func newGmailSender(svc *gmail.Service, cfg config.MailConfig, logger *slog.Logger) *GmailSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &GmailSender{
		svc:      svc,
		from:     cfg.Username,
		fromName: cfg.FromName,
		logger:   logger.With(slog.String("component", "mail"), slog.String("transport", "gmail")),
		now:      time.Now,
	}
}

// Send implements Sender.
func (s *GmailSender) Send(ctx context.Context, msg Message) error {
	raw, err := BuildRFC822(s.fromName, s.from, msg, s.now())
	if err != nil {
		return err
	}

	sent, err := s.svc.Users.Messages.
		Send("me", &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}

	s.logger.DebugContext(ctx, "gmail message accepted", slog.String("gmail_id", sent.Id))
	return nil
}
