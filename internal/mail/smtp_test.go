package mail

import (
	"context"
	"io"
	"mime/quotedprintable"
	"net"
	netmail "net/mail"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/advancetodo/api/internal/config"
	"github.com/advancetodo/api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type smtpTranscript struct {
	auth string
	from string
	rcpt string
	data string
}

// serveFakeSMTP answers one session on conn. rcptReply is the full reply
// line for RCPT TO.
func serveFakeSMTP(conn net.Conn, rcptReply string) <-chan smtpTranscript {
	done := make(chan smtpTranscript, 1)
	go func() {
		var tr smtpTranscript
		defer func() {
			_ = conn.Close()
			done <- tr
		}()

		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP fake")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
			switch verb {
			case "EHLO":
				_ = tp.PrintfLine("250-localhost")
				_ = tp.PrintfLine("250 AUTH PLAIN")
			case "AUTH":
				tr.auth = line
				_ = tp.PrintfLine("235 2.7.0 Authentication successful")
			case "MAIL":
				tr.from = line
				_ = tp.PrintfLine("250 2.1.0 OK")
			case "RCPT":
				tr.rcpt = line
				_ = tp.PrintfLine("%s", rcptReply)
			case "DATA":
				_ = tp.PrintfLine("354 Go ahead")
				lines, err := tp.ReadDotLines()
				if err != nil {
					return
				}
				tr.data = strings.Join(lines, "\r\n")
				_ = tp.PrintfLine("250 2.0.0 queued")
			case "QUIT":
				_ = tp.PrintfLine("221 2.0.0 bye")
				return
			default:
				_ = tp.PrintfLine("502 5.5.2 unsupported")
			}
		}
	}()
	return done
}

func newTestSMTPSender(t *testing.T, server func(net.Conn)) *SMTPSender {
	t.Helper()

	s, err := NewSMTPSender(config.MailConfig{
		FromName: "Advance Todo",
		Username: "reminders@example.com",
		Password: "app-password",
		Host:     "localhost",
		Port:     2525,
	}, logger.Discard())
	require.NoError(t, err)

	s.now = func() time.Time { return time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC) }
	s.dial = func(_ context.Context, network, addr string) (net.Conn, error) {
		assert.Equal(t, "tcp", network)
		assert.Equal(t, "localhost:2525", addr)
		client, srv := net.Pipe()
		server(srv)
		return client, nil
	}
	return s
}

func TestSMTPSender_Send(t *testing.T) {
	t.Parallel()

	var transcript <-chan smtpTranscript
	s := newTestSMTPSender(t, func(conn net.Conn) {
		transcript = serveFakeSMTP(conn, "250 2.1.5 OK")
	})

	err := s.Send(context.Background(), Message{
		To:      "asha@example.com",
		Subject: "Evening Task Reminder",
		Body:    "Hi Asha,\n\n• pay rent (Home)",
	})
	require.NoError(t, err)

	tr := <-transcript
	assert.True(t, strings.HasPrefix(tr.auth, "AUTH PLAIN "))
	assert.Equal(t, "MAIL FROM:<reminders@example.com>", tr.from)
	assert.Equal(t, "RCPT TO:<asha@example.com>", tr.rcpt)

	parsed, err := netmail.ReadMessage(strings.NewReader(tr.data))
	require.NoError(t, err)
	assert.Equal(t, "Evening Task Reminder", parsed.Header.Get("Subject"))
	body, err := io.ReadAll(quotedprintable.NewReader(parsed.Body))
	require.NoError(t, err)
	assert.Contains(t, string(body), "• pay rent (Home)")
}

func TestSMTPSender_RecipientRejected(t *testing.T) {
	t.Parallel()

	var transcript <-chan smtpTranscript
	s := newTestSMTPSender(t, func(conn net.Conn) {
		transcript = serveFakeSMTP(conn, "550 5.1.1 no such user")
	})

	err := s.Send(context.Background(), Message{To: "ghost@example.com", Subject: "s", Body: "b"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rcpt to")
	assert.Contains(t, err.Error(), "550")
	<-transcript
}

func TestSMTPSender_ContextCancelled(t *testing.T) {
	t.Parallel()

	s := newTestSMTPSender(t, func(conn net.Conn) {
		// Never greet; the client blocks until the context is cancelled.
		t.Cleanup(func() { _ = conn.Close() })
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	err := s.Send(ctx, Message{To: "asha@example.com", Subject: "s", Body: "b"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewSMTPSender_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewSMTPSender(config.MailConfig{Host: "smtp.example.com", Username: "a@example.com"}, nil)
	assert.Error(t, err)

	_, err = NewSMTPSender(config.MailConfig{Username: "a@example.com", Password: "pw"}, nil)
	assert.Error(t, err)
}
