package notifier

import (
	"context"
	"fmt"

	"appointment_monitor/internal/config"
	apperrors "appointment_monitor/pkg/errors"
	"appointment_monitor/pkg/logger"
	"appointment_monitor/pkg/metrics"
)

const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)

// Sender определяет интерфейс канала уведомлений
type Sender interface {
	// Channel возвращает имя канала
	Channel() string

	// Send отправляет уведомление
	Send(ctx context.Context, subject, body string) error
}

// Result содержит итог отправки по одному каналу
type Result struct {
	Channel string
	Err     error
}

// OK сообщает, успешна ли отправка
func (r Result) OK() bool {
	return r.Err == nil
}

// Dispatcher рассылает отчет по всем включенным каналам
type Dispatcher struct {
	senders []Sender
	logger  *logger.Logger
}

// NewDispatcher создает диспетчер поверх готовых каналов
func NewDispatcher(log *logger.Logger, senders ...Sender) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		senders: senders,
		logger:  log,
	}
}

// New создает диспетчер с каналами, включенными в конфигурации
func New(n config.Notifications, creds config.Credentials, settings config.Settings, log *logger.Logger) *Dispatcher {
	var senders []Sender
	if n.Email {
		senders = append(senders, NewEmailSender(settings.SMTPHost, settings.SMTPPort, creds).WithTimeout(settings.HTTPTimeout))
	}
	if n.Telegram {
		senders = append(senders, NewTelegramSender(creds, settings.TelegramAPIURL, settings.HTTPTimeout))
	}
	return NewDispatcher(log, senders...)
}

// Channels возвращает имена подключенных каналов
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.senders))
	for _, s := range d.senders {
		names = append(names, s.Channel())
	}
	return names
}

// Dispatch отправляет уведомление во все каналы независимо друг от друга.
// Ошибки логируются и возвращаются в результатах, но не прерывают рассылку.
func (d *Dispatcher) Dispatch(ctx context.Context, subject, body string) []Result {
	results := make([]Result, 0, len(d.senders))

	for _, s := range d.senders {
		err := d.send(ctx, s, subject, body)
		results = append(results, Result{Channel: s.Channel(), Err: err})

		if err != nil {
			fields := []logger.Field{logger.String("channel", s.Channel()), logger.Error(err)}
			if apperrors.IsMonitorError(err) {
				fields = append(fields, logger.String("code", apperrors.Code(err)))
			}
			d.logger.Error("Failed to send notification", fields...)
			metrics.RecordNotification(s.Channel(), "failure")
			continue
		}

		d.logger.Info("Notification sent", logger.String("channel", s.Channel()))
		metrics.RecordNotification(s.Channel(), "success")
	}

	return results
}

func (d *Dispatcher) send(ctx context.Context, s Sender, subject, body string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s sender panicked: %v", s.Channel(), r)
		}
	}()

	d.logger.Info("Sending notification", logger.String("channel", s.Channel()))
	return s.Send(ctx, subject, body)
}
