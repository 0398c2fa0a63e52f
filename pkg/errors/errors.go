package errors

import (
	stderrors "errors"
	"fmt"
)

// MonitorError представляет ошибку монитора с кодом и контекстом
type MonitorError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
	Context interface{} `json:"context,omitempty"`
}

// Error реализует интерфейс error
func (e *MonitorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap позволяет использовать errors.Is и errors.As
func (e *MonitorError) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы errors.Is(err, ErrFetchStatus)
// срабатывал и для копий, созданных через WithError/WithContext
func (e *MonitorError) Is(target error) bool {
	t, ok := target.(*MonitorError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithContext добавляет контекст к ошибке
func (e *MonitorError) WithContext(ctx interface{}) *MonitorError {
	return &MonitorError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Context: ctx,
	}
}

// WithError добавляет underlying ошибку
func (e *MonitorError) WithError(err error) *MonitorError {
	return &MonitorError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
		Context: e.Context,
	}
}

// Предопределенные ошибки
var (
	// Ошибки запроса слотов
	ErrFetchTransport = &MonitorError{
		Code:    "FETCH_TRANSPORT",
		Message: "scheduler API request failed",
	}

	ErrFetchStatus = &MonitorError{
		Code:    "FETCH_STATUS",
		Message: "scheduler API returned unexpected status",
	}

	ErrFetchDecode = &MonitorError{
		Code:    "FETCH_DECODE",
		Message: "scheduler API response could not be decoded",
	}

	// Ошибки уведомлений
	ErrNotifyEmail = &MonitorError{
		Code:    "NOTIFY_EMAIL",
		Message: "failed to send email notification",
	}

	ErrNotifyTelegram = &MonitorError{
		Code:    "NOTIFY_TELEGRAM",
		Message: "failed to send Telegram notification",
	}

	ErrCredentialsMissing = &MonitorError{
		Code:    "CREDENTIALS_MISSING",
		Message: "notification credentials are not configured",
	}

	// Системные ошибки
	ErrConfigurationInvalid = &MonitorError{
		Code:    "CONFIG_INVALID",
		Message: "invalid configuration",
	}
)

// Code возвращает код MonitorError из цепочки ошибок или пустую строку
func Code(err error) string {
	var me *MonitorError
	if stderrors.As(err, &me) {
		return me.Code
	}
	return ""
}

// IsMonitorError проверяет, содержит ли цепочка MonitorError
func IsMonitorError(err error) bool {
	var me *MonitorError
	return stderrors.As(err, &me)
}
