package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	netmail "net/mail"
	"strings"
	"testing"

	"github.com/advancetodo/api/internal/config"
	"github.com/advancetodo/api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func newTestGmailSender(t *testing.T, handler http.HandlerFunc) *GmailSender {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	return newGmailSender(svc, config.MailConfig{
		FromName: "Advance Todo",
		Username: "reminders@example.com",
	}, logger.Discard())
}

func TestGmailSender_Send(t *testing.T) {
	t.Parallel()

	var raw string
	s := newTestGmailSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/me/messages/send"), r.URL.Path)

		var msg gmail.Message
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		raw = msg.Raw

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg-1","threadId":"thread-1"}`))
	})

	err := s.Send(context.Background(), Message{
		To:      "asha@example.com",
		Subject: "Morning Task Reminder",
		Body:    "Hi Asha,",
	})
	require.NoError(t, err)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	parsed, err := netmail.ReadMessage(strings.NewReader(string(decoded)))
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", parsed.Header.Get("To"))
	assert.Equal(t, `"Advance Todo" <reminders@example.com>`, parsed.Header.Get("From"))
}

func TestGmailSender_APIError(t *testing.T) {
	t.Parallel()

	s := newTestGmailSender(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"insufficient scope"}}`))
	})

	err := s.Send(context.Background(), Message{To: "asha@example.com", Subject: "s", Body: "b"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gmail send")
}

func TestGmailSender_InvalidMessageNeverCallsAPI(t *testing.T) {
	t.Parallel()

	called := false
	s := newTestGmailSender(t, func(http.ResponseWriter, *http.Request) { called = true })

	err := s.Send(context.Background(), Message{To: "bad"})

	assert.ErrorIs(t, err, ErrInvalidRecipient)
	assert.False(t, called)
}

func TestNewGmailSender_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewGmailSender(context.Background(), config.MailConfig{GmailClientID: "id"}, nil)
	assert.Error(t, err)
}
