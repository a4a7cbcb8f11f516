package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/tgiffonirs/gomarketplace/pkg/config"
)

// Storage drivers the cart can persist to.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the cart server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"CART_HTTP_PORT" envDefault:"8003"`
	RequestTimeout  time.Duration `env:"CART_REQUEST_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"CART_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Per-client rate limit on the cart API. Zero RPS disables it.
	RateLimitRPS   float64 `env:"CART_RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int     `env:"CART_RATE_LIMIT_BURST" envDefault:"20"`

	// Cart storage
	StorageDriver string        `env:"CART_STORAGE_DRIVER" envDefault:"memory"`
	StorageKey    string        `env:"CART_STORAGE_KEY" envDefault:"@GoMarketplace:products"`
	SlowThreshold time.Duration `env:"CART_STORAGE_SLOW_THRESHOLD" envDefault:"200ms"`
	WriteTimeout  time.Duration `env:"CART_STORAGE_WRITE_TIMEOUT" envDefault:"5s"`

	// Redis
	RedisAddr   string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass   string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB     int           `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix string        `env:"REDIS_KEY_PREFIX" envDefault:""`
	RedisTTL    time.Duration `env:"REDIS_KEY_TTL" envDefault:"0s"`

	// Postgres
	PostgresDSN string `env:"POSTGRES_DSN" envDefault:""`

	// Kafka. An empty list disables the cart update relay.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load cart config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if strings.TrimSpace(c.StorageKey) == "" {
		return fmt.Errorf("CART_STORAGE_KEY must not be empty")
	}
	switch c.StorageDriver {
	case DriverMemory, DriverRedis:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when CART_STORAGE_DRIVER=%s", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown CART_STORAGE_DRIVER %q (want memory, redis or postgres)", c.StorageDriver)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("CART_STORAGE_WRITE_TIMEOUT must be positive")
	}
	if c.RedisTTL < 0 {
		return fmt.Errorf("REDIS_KEY_TTL must not be negative")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("CART_RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("CART_RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	return nil
}

// RelayEnabled reports whether cart updates should be published to Kafka.
func (c *Config) RelayEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
