// Package config provides application configuration.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all application configuration, loaded from environment
// variables.
type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	DBPath         string        `env:"DB_PATH" envDefault:"./data/auditflow.db"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Model settings. The intake engine talks to any OpenAI-compatible
	// completion endpoint.
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	ModelTimeout  time.Duration `env:"MODEL_TIMEOUT" envDefault:"30s"`

	// HourlyValue is the dollar value of one saved working hour, used
	// when estimating the annual value of matched opportunities.
	HourlyValue float64 `env:"HOURLY_VALUE" envDefault:"60"`

	Notify NotifyConfig
}

// NotifyConfig holds endpoints for the outbound lead notifications.
// Empty values disable the corresponding channel.
type NotifyConfig struct {
	WebhookURL    string        `env:"LEAD_WEBHOOK_URL"`
	CRMBaseURL    string        `env:"CRM_BASE_URL"`
	CRMToken      string        `env:"CRM_API_TOKEN"`
	EmailEndpoint string        `env:"EMAIL_ENDPOINT"`
	EmailFrom     string        `env:"EMAIL_FROM" envDefault:"reports@auditflow.local"`
	BookingURL    string        `env:"BOOKING_URL"`
	Timeout       time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are usable.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.ModelTimeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT must be positive")
	}
	if c.HourlyValue <= 0 {
		return fmt.Errorf("HOURLY_VALUE must be positive")
	}
	if c.Notify.CRMBaseURL != "" && c.Notify.CRMToken == "" {
		return fmt.Errorf("CRM_API_TOKEN is required when CRM_BASE_URL is set")
	}
	return nil
}
