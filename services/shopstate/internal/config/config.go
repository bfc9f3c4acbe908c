package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/maysa/storefront/pkg/config"
)

// Storage backends for the session slots.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all configuration for the shopstate service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"SHOPSTATE_HTTP_PORT" envDefault:"8010"`

	// Slot storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"redis"`
	SlotTTLHours   int    `env:"SLOT_TTL_HOURS" envDefault:"0"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_KEY_PREFIX" envDefault:"shopstate:"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"maysa"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:""`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Stores
	RecentlyViewedLimit int `env:"RECENTLY_VIEWED_LIMIT" envDefault:"10"`

	// Catalog collaborator
	CatalogBaseURL        string `env:"CATALOG_BASE_URL" envDefault:"http://localhost:8001"`
	CatalogTimeoutSeconds int    `env:"CATALOG_TIMEOUT_SECONDS" envDefault:"5"`

	// Wishlist share links
	ShareOrigin string `env:"SHARE_ORIGIN" envDefault:"http://localhost:3000"`

	// Kafka
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// HTTP edge
	RateLimitRPS       float64  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" envDefault:"40"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return finish(pkgconfig.Load)
}

// LoadFrom reads configuration from the given variables.
func LoadFrom(environ map[string]string) (*Config, error) {
	return finish(func(cfg any) error { return pkgconfig.LoadFrom(cfg, environ) })
}

func finish(load func(any) error) (*Config, error) {
	cfg := &Config{}
	if err := load(cfg); err != nil {
		return nil, fmt.Errorf("load shopstate config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SlotTTL returns the slot expiry; zero means slots never expire.
func (c *Config) SlotTTL() time.Duration {
	return time.Duration(c.SlotTTLHours) * time.Hour
}

// CatalogTimeout returns the per-request catalog timeout.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.CatalogTimeoutSeconds) * time.Second
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StorageBackend {
	case BackendRedis, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of redis, postgres, memory; got %q", c.StorageBackend)
	}
	if c.SlotTTLHours < 0 {
		return fmt.Errorf("SLOT_TTL_HOURS must not be negative")
	}
	if c.RecentlyViewedLimit < 1 {
		return fmt.Errorf("RECENTLY_VIEWED_LIMIT must be at least 1")
	}
	if c.CatalogTimeoutSeconds < 1 {
		return fmt.Errorf("CATALOG_TIMEOUT_SECONDS must be at least 1")
	}
	for name, raw := range map[string]string{"CATALOG_BASE_URL": c.CatalogBaseURL, "SHARE_ORIGIN": c.ShareOrigin} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", name)
		}
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
	}
	return nil
}
