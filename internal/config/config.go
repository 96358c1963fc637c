// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	DBPath   string `env:"DB_PATH" envDefault:"lostfound.sqlite3"`
	Addr     string `env:"ADDR" envDefault:":8080"`
	LogFile  string `env:"LOG_FILE"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// JWTSecret overrides the secret stored in the database.
	JWTSecret string `env:"JWT_SECRET"`

	// AdminEmails are registered with the ADMIN role.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`
	// AllowedEmailDomains restricts registration when non-empty.
	AllowedEmailDomains []string `env:"ALLOWED_EMAIL_DOMAINS" envSeparator:","`

	GeminiAPIKey        string        `env:"GEMINI_API_KEY"`
	AssistModel         string        `env:"ASSIST_MODEL" envDefault:"gemini-2.5-flash"`
	AssistTimeout       time.Duration `env:"ASSIST_TIMEOUT" envDefault:"8s"`
	AssistMaxConcurrent int64         `env:"ASSIST_MAX_CONCURRENT" envDefault:"4"`

	// RedisURL enables the shared item lock used by several instances.
	RedisURL string        `env:"REDIS_URL"`
	LockTTL  time.Duration `env:"LOCK_TTL" envDefault:"10s"`

	// RabbitMQURL enables publishing lifecycle events to RabbitMQ.
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

// Load reads a .env file if present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.AdminEmails = cleanList(c.AdminEmails)
	c.AllowedEmailDomains = cleanList(c.AllowedEmailDomains)
	for i, d := range c.AllowedEmailDomains {
		c.AllowedEmailDomains[i] = strings.TrimPrefix(d, "@")
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.AssistTimeout <= 0 {
		return fmt.Errorf("ASSIST_TIMEOUT must be positive, got %s", c.AssistTimeout)
	}
	if c.AssistMaxConcurrent <= 0 {
		return fmt.Errorf("ASSIST_MAX_CONCURRENT must be positive, got %d", c.AssistMaxConcurrent)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive, got %s", c.LockTTL)
	}
	return nil
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

// EmailAllowed reports whether email may register. Any address is allowed
// when no domains are configured.
func (c *Config) EmailAllowed(email string) bool {
	if len(c.AllowedEmailDomains) == 0 {
		return true
	}
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range c.AllowedEmailDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// ParseLevel maps LOG_LEVEL to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func cleanList(in []string) []string {
	out := in[:0]
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
