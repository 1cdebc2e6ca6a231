package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Azizo-B/microservices/pkg/config"
)

// Config holds all configuration for the user service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"USER_HTTP_PORT" envDefault:"9000"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"identity"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"identity_secret"`
	PostgresDB   string `env:"USER_DB_NAME" envDefault:"user_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret   string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTAudience string        `env:"JWT_AUDIENCE" envDefault:"user.service"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"user.service"`
	JWTExpiry   time.Duration `env:"JWT_EXPIRY" envDefault:"1h"`

	// AuthDelayMax bounds the uniform random delay on credential-processing
	// endpoints.
	AuthDelayMax time.Duration `env:"AUTH_DELAY_MAX" envDefault:"5s"`

	// Per-IP rate budget for the credential endpoints.
	AuthRateRPS   int `env:"AUTH_RATE_RPS" envDefault:"5"`
	AuthRateBurst int `env:"AUTH_RATE_BURST" envDefault:"10"`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load user config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.JWTExpiry <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRY must be positive, got %s", cfg.JWTExpiry)
	}
	if cfg.AuthRateRPS < 1 || cfg.AuthRateBurst < 1 {
		return nil, fmt.Errorf("AUTH_RATE_RPS and AUTH_RATE_BURST must be positive")
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}
