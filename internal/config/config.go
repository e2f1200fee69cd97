// Package config reads runtime settings from the environment
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

// Backend selects where the store mirrors its state
type Backend string

// Backends
const (
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
	BackendSQLite Backend = "sqlite"
)

// Config holds everything the CLI needs to assemble the services
type Config struct {
	Backend Backend `env:"FICHA_BACKEND" envDefault:"sqlite"`

	RedisAddr      string `env:"FICHA_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisKeyPrefix string `env:"FICHA_REDIS_PREFIX" envDefault:"ficha:"`

	SQLitePath string `env:"FICHA_SQLITE_PATH" envDefault:"ficha.db"`

	// Passphrase gates destructive actions and turning GM mode on
	Passphrase string `env:"FICHA_PASSPHRASE" envDefault:"mestre"`

	RollHistoryLimit int `env:"FICHA_ROLL_HISTORY" envDefault:"50"`

	LogLevel string `env:"FICHA_LOG_LEVEL" envDefault:"warn"`
}

// Load reads the optional dotenv files, then the environment. Variables
// already set win over dotenv values. Missing dotenv files are ignored.
func Load(dotenvFiles ...string) (*Config, error) {
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read %s", file)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings of the chosen backend
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	switch c.Backend {
	case BackendMemory:
	case BackendRedis:
		errors.ValidateRequired("RedisAddr", c.RedisAddr, vb)
	case BackendSQLite:
		errors.ValidateRequired("SQLitePath", c.SQLitePath, vb)
	default:
		vb.Fieldf("Backend", "must be one of memory, redis, sqlite; got %q", c.Backend)
	}

	if c.RollHistoryLimit < 0 {
		vb.Field("RollHistoryLimit", "cannot be negative")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		vb.Fieldf("LogLevel", "unknown level %q", c.LogLevel)
	}

	return vb.Build()
}

// SlogLevel returns the configured log level, warn when unset
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

func parseLevel(raw string) (slog.Level, error) {
	if strings.TrimSpace(raw) == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(raw)))
	return level, err
}
