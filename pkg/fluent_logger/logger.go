package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config - параметры подключения к Fluent Bit
type Config struct {
	Host      string // "127.0.0.1" или "fluent-bit" внутри docker-сети
	Port      int    // обычно 24224
	TagPrefix string // префикс тегов, обычно имя сервиса
	// Async - не блокировать вызывающего при недоступном коллекторе
	Async        bool
	WriteTimeout time.Duration
}

// Validate проверяет обязательные поля
func (c Config) Validate() error {
	if c.TagPrefix == "" {
		return fmt.Errorf("fluent: tag prefix is required")
	}
	if c.Host == "" {
		return fmt.Errorf("fluent: host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("fluent: invalid port %d", c.Port)
	}
	return nil
}

// NewClient создает клиента Fluent Bit.
// Соединение устанавливается лениво, ошибки проявятся при первой отправке.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := fluent.New(fluent.Config{
		FluentHost:   cfg.Host,
		FluentPort:   cfg.Port,
		TagPrefix:    cfg.TagPrefix,
		Async:        cfg.Async,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("fluent: failed to create client: %w", err)
	}
	return client, nil
}
