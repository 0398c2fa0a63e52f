package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "appointment_monitor/pkg/errors"
)

const (
	DefaultAPIBaseURL = "https://ttp.cbp.dhs.gov/schedulerapi"
	DefaultSMTPHost   = "smtp.gmail.com"
	DefaultSMTPPort   = 587
)

// Settings содержит параметры процесса из переменных окружения
type Settings struct {
	Debug          bool
	LogFile        string
	APIBaseURL     string
	HTTPTimeout    time.Duration
	SMTPHost       string
	SMTPPort       int
	StatusPort     string
	TelegramAPIURL string

	// StatusRateLimit запросов в минуту с одного IP к серверу статуса;
	// 0 без ограничения
	StatusRateLimit int
	// StatusTrustProxy брать адрес клиента из X-Forwarded-For
	StatusTrustProxy bool
}

// Credentials содержит секреты каналов уведомлений
type Credentials struct {
	EmailAddress     string
	EmailPassword    string
	ToEmail          string
	TelegramBotToken string
	TelegramChatID   string
}

// LoadSettings загружает настройки процесса из переменных окружения
func LoadSettings() Settings {
	s := Settings{
		Debug:            getEnvAsBool("DEBUG", false),
		APIBaseURL:       strings.TrimRight(getEnv("SCHEDULER_API_URL", DefaultAPIBaseURL), "/"),
		HTTPTimeout:      getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		SMTPHost:         getEnv("SMTP_HOST", DefaultSMTPHost),
		SMTPPort:         getEnvAsInt("SMTP_PORT", DefaultSMTPPort),
		StatusPort:       os.Getenv("STATUS_PORT"),
		TelegramAPIURL:   os.Getenv("TELEGRAM_API_URL"),
		StatusRateLimit:  getEnvAsInt("STATUS_RATE_LIMIT", 60),
		StatusTrustProxy: getEnvAsBool("STATUS_TRUST_PROXY", false),
	}

	s.LogFile = getEnv("LOG_FILE", s.defaultLogFile())
	return s
}

func (s Settings) defaultLogFile() string {
	if s.Debug {
		return "appointment_debug.log"
	}
	return "appointment.log"
}

// LoadCredentials загружает секреты из переменных окружения
func LoadCredentials() Credentials {
	return Credentials{
		EmailAddress:     os.Getenv("EMAIL_ADDRESS"),
		EmailPassword:    os.Getenv("EMAIL_PASSWORD"),
		ToEmail:          os.Getenv("TO_EMAIL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}
}

// EmailReady сообщает, заданы ли все значения для отправки почты
func (c Credentials) EmailReady() bool {
	return c.EmailAddress != "" && c.EmailPassword != "" && c.ToEmail != ""
}

// TelegramReady сообщает, заданы ли токен бота и чат
func (c Credentials) TelegramReady() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// Validate проверяет секреты включенных каналов. Ошибки не фатальны:
// канал без секретов будет падать при отправке.
func (c Credentials) Validate(n Notifications) []error {
	var errs []error
	if n.Email && !c.EmailReady() {
		errs = append(errs, apperrors.ErrCredentialsMissing.WithContext("email").WithError(
			fmt.Errorf("EMAIL_ADDRESS, EMAIL_PASSWORD and TO_EMAIL are required for email notifications")))
	}
	if n.Telegram && !c.TelegramReady() {
		errs = append(errs, apperrors.ErrCredentialsMissing.WithContext("telegram").WithError(
			fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required for Telegram notifications")))
	}
	return errs
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvAsInt получает переменную окружения как число
func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvAsDuration получает переменную окружения как duration
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.ToLower(v) == "true"
	}
	return fallback
}
