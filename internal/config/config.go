package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "appointment_monitor/pkg/errors"

	"gopkg.in/yaml.v3"
)

// Config содержит параметры мониторинга из файла конфигурации
type Config struct {
	Programs      []string                `json:"programs" yaml:"programs"`
	Locations     map[string]LocationList `json:"locations" yaml:"locations"`
	CheckInterval []int                   `json:"check_interval" yaml:"check_interval"`
	Notifications Notifications           `json:"notifications" yaml:"notifications"`
	Limit         int                     `json:"limit" yaml:"limit"`
	StartDate     string                  `json:"start_date" yaml:"start_date"`
	EndDate       string                  `json:"end_date" yaml:"end_date"`
	Concurrency   int                     `json:"concurrency" yaml:"concurrency"`
}

// Notifications содержит флаги каналов уведомлений
type Notifications struct {
	Email    bool `json:"email" yaml:"email"`
	Telegram bool `json:"telegram" yaml:"telegram"`
}

// Load читает файл конфигурации. Формат выбирается по расширению:
// .yaml/.yml через yaml.v3, остальное как JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Parse разбирает содержимое конфигурации, подставляет значения по умолчанию
// и проверяет результат
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.ErrConfigurationInvalid.WithError(err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.ErrConfigurationInvalid.WithError(err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.ErrConfigurationInvalid.WithError(err).WithContext("validation")
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Limit <= 0 {
		c.Limit = 1
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.Locations == nil {
		c.Locations = map[string]LocationList{}
	}
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if len(c.CheckInterval) != 2 {
		return fmt.Errorf("check_interval must have exactly two values, got %d", len(c.CheckInterval))
	}
	if c.CheckInterval[0] < 0 {
		return fmt.Errorf("check_interval minimum must be non-negative")
	}
	if c.CheckInterval[0] > c.CheckInterval[1] {
		return fmt.Errorf("check_interval minimum %d is greater than maximum %d", c.CheckInterval[0], c.CheckInterval[1])
	}
	for _, p := range c.Programs {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("programs must not contain empty names")
		}
	}

	// Некорректные даты не ошибка: монитор переходит в режим ближайших слотов

	return nil
}

// LocationsFor возвращает локации программы; отсутствующая программа дает
// пустой список
func (c *Config) LocationsFor(program string) []int {
	return []int(c.Locations[program])
}

// Summary возвращает многострочное описание конфигурации для лога запуска
func (c *Config) Summary() string {
	var sb strings.Builder
	sb.WriteString("\n======= Configuration =======\n")
	fmt.Fprintf(&sb, "Programs: %v\n", c.Programs)
	fmt.Fprintf(&sb, "Locations: %v\n", c.Locations)
	fmt.Fprintf(&sb, "Check Interval: %v\n", c.CheckInterval)
	fmt.Fprintf(&sb, "Notifications: email=%t telegram=%t\n", c.Notifications.Email, c.Notifications.Telegram)
	fmt.Fprintf(&sb, "Limit: %d\n", c.Limit)
	fmt.Fprintf(&sb, "Start Date: %s\n", c.StartDate)
	fmt.Fprintf(&sb, "End Date: %s\n", c.EndDate)
	fmt.Fprintf(&sb, "Concurrency: %d\n", c.Concurrency)
	sb.WriteString("=============================")
	return sb.String()
}
