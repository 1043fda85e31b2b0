package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/samber/lo"
)

const (
	SourceHTTP     = "http"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

type Config struct {
	DevMode bool `env:"DEV_MODE" envDefault:"false"`

	PricesSource  string `env:"PRICES_SOURCE" envDefault:"http"`
	PricesBaseURL string `env:"PRICES_BASE_URL"`
	PricesFile    string `env:"PRICES_FILE"`

	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	PublicBaseURL      string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	CORSOrigins        []string      `env:"CORS_ORIGINS" envSeparator:","`

	TelegramToken string  `env:"TELEGRAM_TOKEN"`
	AdminIDs      []int64 `env:"ADMIN_IDS" envSeparator:","`

	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	Database Database `envPrefix:"DB_"`
}

type Database struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
}

// BotEnabled reports whether the Telegram front end should start.
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

func (c *Config) IsAdmin(userID int64) bool {
	return lo.Contains(c.AdminIDs, userID)
}

// StoreEnabled reports whether a Postgres price table store is configured.
// Uploaded tables are versioned there even when another source is primary.
func (c *Config) StoreEnabled() bool {
	return c.Database.Host != ""
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.PricesSource {
	case SourceHTTP:
		if c.PricesBaseURL == "" {
			return fmt.Errorf("PRICES_BASE_URL is required for the %q price source", SourceHTTP)
		}
	case SourceFile:
		if c.PricesFile == "" {
			return fmt.Errorf("PRICES_FILE is required for the %q price source", SourceFile)
		}
	case SourcePostgres:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("DB_HOST, DB_USER and DB_NAME are required for the %q price source", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown PRICES_SOURCE %q", c.PricesSource)
	}

	if c.BotEnabled() && len(c.AdminIDs) == 0 {
		return fmt.Errorf("at least one admin ID is required when the bot is enabled")
	}

	return nil
}
