// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	DBPath   string `env:"DB_PATH" envDefault:"shifts.db"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	CORS struct {
		AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`
	} `envPrefix:"CORS_"`

	DefaultLocale     string `env:"DEFAULT_LOCALE" envDefault:"en"`
	MorningCutOffHour int    `env:"MORNING_CUT_OFF_HOUR" envDefault:"12"`
}

// Load parses the environment. Only the first error is returned so the
// startup log stays readable.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MorningCutOffHour < 1 || c.MorningCutOffHour > 23 {
		return fmt.Errorf("MORNING_CUT_OFF_HOUR must be 1-23, got %d", c.MorningCutOffHour)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be 1-65535, got %d", c.Port)
	}
	return nil
}

// NewLogger builds a production zap logger, at debug level when
// LOG_LEVEL=debug.
func NewLogger(level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	if lvl == zapcore.DebugLevel {
		zc.Development = true
	}
	return zc.Build()
}
