package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string `envconfig:"TELEGRAM_BOT_TOKEN" validate:"required"`

	// Bot mode configuration
	WebhookMode bool   `envconfig:"WEBHOOK_MODE" default:"false"` // If true, use webhook mode; if false, use polling mode
	WebhookURL  string `envconfig:"WEBHOOK_URL" validate:"required_if=WebhookMode true"`

	Port string `envconfig:"PORT" default:"8080" validate:"numeric"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`

	// Number of membership probes run at once while resolving recipients
	ProbeConcurrency int `envconfig:"PROBE_CONCURRENCY" default:"4" validate:"min=1,max=64"`
	// Long polling timeout in seconds
	UpdateTimeout int `envconfig:"UPDATE_TIMEOUT" default:"60" validate:"min=1"`
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
