package notifier

import (
	"context"
	"net/http"
	"sync"
	"time"

	"appointment_monitor/internal/config"
	apperrors "appointment_monitor/pkg/errors"

	tgbot "github.com/go-telegram/bot"
)

// TelegramSender отправляет уведомления через Telegram Bot API
type TelegramSender struct {
	token     string
	chatID    string
	serverURL string
	timeout   time.Duration

	mu  sync.Mutex
	bot *tgbot.Bot
}

// NewTelegramSender создает отправителя. Бот создается при первой отправке.
// Пустой serverURL означает api.telegram.org.
func NewTelegramSender(creds config.Credentials, serverURL string, timeout time.Duration) *TelegramSender {
	return &TelegramSender{
		token:     creds.TelegramBotToken,
		chatID:    creds.TelegramChatID,
		serverURL: serverURL,
		timeout:   timeout,
	}
}

// Channel реализует Sender
func (t *TelegramSender) Channel() string {
	return ChannelTelegram
}

// Send реализует Sender. Тема в Telegram не передается, только текст.
func (t *TelegramSender) Send(ctx context.Context, _ string, body string) error {
	if t.token == "" || t.chatID == "" {
		return apperrors.ErrCredentialsMissing.WithContext(ChannelTelegram)
	}

	b, err := t.client()
	if err != nil {
		return apperrors.ErrNotifyTelegram.WithError(err)
	}

	params := &tgbot.SendMessageParams{
		ChatID: t.chatID,
		Text:   body,
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		return apperrors.ErrNotifyTelegram.WithError(err).WithContext(t.chatID)
	}

	return nil
}

func (t *TelegramSender) client() (*tgbot.Bot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bot != nil {
		return t.bot, nil
	}

	opts := []tgbot.Option{tgbot.WithSkipGetMe()}
	if t.serverURL != "" {
		opts = append(opts, tgbot.WithServerURL(t.serverURL))
	}
	if t.timeout > 0 {
		opts = append(opts, tgbot.WithHTTPClient(t.timeout, &http.Client{Timeout: t.timeout}))
	}

	b, err := tgbot.New(t.token, opts...)
	if err != nil {
		return nil, err
	}

	t.bot = b
	return b, nil
}
