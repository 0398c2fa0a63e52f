package notifier

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"appointment_monitor/internal/config"
	apperrors "appointment_monitor/pkg/errors"
	"appointment_monitor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	channel string
	err     error
	panics  bool
	calls   int
	body    string
}

func (s *stubSender) Channel() string { return s.channel }

func (s *stubSender) Send(ctx context.Context, subject, body string) error {
	s.calls++
	s.body = body
	if s.panics {
		panic("boom")
	}
	return s.err
}

func TestDispatcher_SendsToAllChannels(t *testing.T) {
	email := &stubSender{channel: ChannelEmail}
	tg := &stubSender{channel: ChannelTelegram}
	d := NewDispatcher(nil, email, tg)

	results := d.Dispatch(context.Background(), "Appointment Found", "report")

	require.Len(t, results, 2)
	assert.True(t, results[0].OK())
	assert.True(t, results[1].OK())
	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 1, tg.calls)
	assert.Equal(t, "report", tg.body)
}

func TestDispatcher_EmailFailureDoesNotBlockTelegram(t *testing.T) {
	email := &stubSender{channel: ChannelEmail, err: apperrors.ErrNotifyEmail.WithError(errors.New("dial tcp: timeout"))}
	tg := &stubSender{channel: ChannelTelegram}
	d := NewDispatcher(nil, email, tg)

	results := d.Dispatch(context.Background(), "Appointment Found", "report")

	require.Len(t, results, 2)
	assert.Equal(t, ChannelEmail, results[0].Channel)
	assert.ErrorIs(t, results[0].Err, apperrors.ErrNotifyEmail)
	assert.Equal(t, ChannelTelegram, results[1].Channel)
	assert.True(t, results[1].OK())
	assert.Equal(t, 1, tg.calls)
}

func TestDispatcher_LogsFailureCode(t *testing.T) {
	var buf bytes.Buffer
	email := &stubSender{channel: ChannelEmail, err: apperrors.ErrNotifyEmail.WithError(errors.New("dial tcp: timeout"))}
	tg := &stubSender{channel: ChannelTelegram, err: errors.New("plain failure")}
	d := NewDispatcher(logger.New(logger.LevelInfo, &buf), email, tg)

	d.Dispatch(context.Background(), "Appointment Found", "report")

	out := buf.String()
	assert.Contains(t, out, "channel=email")
	assert.Contains(t, out, "code=NOTIFY_EMAIL")
	assert.Equal(t, 1, strings.Count(out, "code="))
}

func TestDispatcher_RecoversPanic(t *testing.T) {
	email := &stubSender{channel: ChannelEmail, panics: true}
	tg := &stubSender{channel: ChannelTelegram}
	d := NewDispatcher(nil, email, tg)

	var results []Result
	assert.NotPanics(t, func() {
		results = d.Dispatch(context.Background(), "Appointment Found", "report")
	})

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "boom")
	assert.True(t, results[1].OK())
}

func TestDispatcher_NoChannels(t *testing.T) {
	d := NewDispatcher(nil)

	assert.Empty(t, d.Dispatch(context.Background(), "Appointment Found", "report"))
	assert.Empty(t, d.Channels())
}

func TestNew_EnabledChannels(t *testing.T) {
	settings := config.Settings{SMTPHost: "smtp.example.com", SMTPPort: 587, HTTPTimeout: time.Second}

	tests := []struct {
		name string
		n    config.Notifications
		want []string
	}{
		{"none", config.Notifications{}, []string{}},
		{"email only", config.Notifications{Email: true}, []string{ChannelEmail}},
		{"telegram only", config.Notifications{Telegram: true}, []string{ChannelTelegram}},
		{"both", config.Notifications{Email: true, Telegram: true}, []string{ChannelEmail, ChannelTelegram}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.n, config.Credentials{}, settings, nil)
			assert.Equal(t, tt.want, d.Channels())
		})
	}
}

func TestNew_MissingCredentialsFailAtSend(t *testing.T) {
	settings := config.Settings{SMTPHost: "smtp.example.com", SMTPPort: 587, HTTPTimeout: time.Second}
	d := New(config.Notifications{Email: true, Telegram: true}, config.Credentials{}, settings, nil)

	results := d.Dispatch(context.Background(), "Appointment Found", "report")

	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, apperrors.ErrCredentialsMissing, r.Channel)
	}
}

func TestDispatcher_WithEmailSender(t *testing.T) {
	var sent []sentMail
	email := NewEmailSender("smtp.example.com", 587, testEmailCreds).
		WithSendMail(func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: msg})
			return nil
		})
	d := NewDispatcher(nil, email)

	results := d.Dispatch(context.Background(), "Appointment Found", "report")

	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
	assert.Len(t, sent, 1)
}
