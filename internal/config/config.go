// Package config loads and validates process configuration from the
// environment. Loading is eager: a missing or malformed value fails at
// startup rather than on first use.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr string `env:"DEALER_ADDR" envDefault:":8080"`

	PGDSN string `env:"DEALER_PG_DSN"`

	JWTSecret       string        `env:"DEALER_JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"DEALER_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"DEALER_REFRESH_TOKEN_TTL" envDefault:"168h"`

	// ResetURL is the base URL reset links are built from, e.g.
	// https://app.example.com/reset-password. The token is appended
	// as a query parameter.
	ResetURL string `env:"DEALER_RESET_URL" envDefault:"http://localhost:8080/reset-password"`

	SMTPHost string `env:"DEALER_SMTP_HOST"`
	SMTPPort int    `env:"DEALER_SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"DEALER_SMTP_USER"`
	SMTPPass string `env:"DEALER_SMTP_PASS"`
	MailFrom string `env:"DEALER_MAIL_FROM"`

	RateLimitRPS   float64 `env:"DEALER_RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"DEALER_RATE_LIMIT_BURST" envDefault:"40"`

	MaxBodyBytes int64 `env:"DEALER_MAX_BODY_BYTES" envDefault:"1048576"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.PGDSN == "" {
		return errors.New("config: DEALER_PG_DSN must be set")
	}
	if c.JWTSecret == "" {
		return errors.New("config: DEALER_JWT_SECRET must be set")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("config: DEALER_ACCESS_TOKEN_TTL must be positive")
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return errors.New("config: DEALER_REFRESH_TOKEN_TTL must exceed DEALER_ACCESS_TOKEN_TTL")
	}
	if _, err := url.ParseRequestURI(c.ResetURL); err != nil {
		return fmt.Errorf("config: DEALER_RESET_URL: %w", err)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("config: rate limit values must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("config: DEALER_MAX_BODY_BYTES must be positive")
	}
	return nil
}
