package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort         string        `mapstructure:"SERVER_PORT"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	TokenCacheTTL      time.Duration `mapstructure:"TOKEN_CACHE_TTL"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	QueryTimeout       time.Duration `mapstructure:"QUERY_TIMEOUT"`
	WebhookSecret      string        `mapstructure:"WEBHOOK_SECRET"`
	DeployDir          string        `mapstructure:"DEPLOY_DIR"`
	AllowedOrigins     []string      `mapstructure:"ALLOWED_ORIGINS"`
	RateLimitPerMinute int           `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	LogFile            string        `mapstructure:"LOG_FILE"`
	RunMigrations      bool          `mapstructure:"RUN_MIGRATIONS"`
}

var defaults = map[string]any{
	"SERVER_PORT":           "8080",
	"TOKEN_CACHE_TTL":       time.Hour,
	"REQUEST_TIMEOUT":       30 * time.Second,
	"QUERY_TIMEOUT":         10 * time.Second,
	"DEPLOY_DIR":            ".",
	"ALLOWED_ORIGINS":       []string{},
	"RATE_LIMIT_PER_MINUTE": 600,
	"LOG_LEVEL":             "info",
	"RUN_MIGRATIONS":        true,
}

// LoadConfig reads configuration from the environment. Callers load .env
// beforehand.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range []string{"DATABASE_URL", "REDIS_URL", "WEBHOOK_SECRET", "LOG_FILE"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.AllowedOrigins = splitOrigins(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	// Validate required fields
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.RedisURL == "" {
		return errors.New("REDIS_URL is required")
	}
	if c.TokenCacheTTL <= 0 {
		return errors.New("TOKEN_CACHE_TTL must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.QueryTimeout < 0 {
		return errors.New("QUERY_TIMEOUT must not be negative")
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

// splitOrigins accepts both comma separated and already split values.
func splitOrigins(values []string) []string {
	var out []string
	for _, v := range values {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
