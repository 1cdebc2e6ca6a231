package config

import (
	"fmt"

	pkgconfig "github.com/Azizo-B/microservices/pkg/config"
)

// Config holds all configuration for the notification service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"NOTIFICATION_HTTP_PORT" envDefault:"9002"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"identity"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"identity_secret"`
	PostgresDB   string `env:"NOTIFICATION_DB_NAME" envDefault:"notification_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// user-service peer and the service's own account for event processing.
	// The user-service scopes accounts per application, so logging in the
	// service account requires its application id as well.
	UserServiceURL  string `env:"USER_SERVICE_URL" envDefault:"http://localhost:9000"`
	ServiceAppID    string `env:"NOTIFICATION_SERVICE_APP_ID"`
	ServiceEmail    string `env:"NOTIFICATION_SERVICE_EMAIL"`
	ServicePassword string `env:"NOTIFICATION_SERVICE_PASSWORD"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Redis, for consumer deduplication
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Sender credential encryption
	EncryptionKey string `env:"ENCRYPTION_KEY" envDefault:"dev-encryption-key-change-me"`

	// DefaultSenderID is the sender used for event-driven notifications.
	// Event consumption is disabled when unset.
	DefaultSenderID string `env:"DEFAULT_SENDER_ID"`

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
		return nil, fmt.Errorf("load notification config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.UserServiceURL == "" {
		return nil, fmt.Errorf("USER_SERVICE_URL must be set")
	}
	if cfg.Environment != "development" {
		if cfg.EncryptionKey == "dev-encryption-key-change-me" || len(cfg.EncryptionKey) < 32 {
			return nil, fmt.Errorf("ENCRYPTION_KEY must be set to at least 32 characters outside development")
		}
	}
	if cfg.DefaultSenderID != "" && (cfg.ServiceAppID == "" || cfg.ServiceEmail == "" || cfg.ServicePassword == "") {
		return nil, fmt.Errorf("NOTIFICATION_SERVICE_APP_ID, NOTIFICATION_SERVICE_EMAIL and NOTIFICATION_SERVICE_PASSWORD must be set when event consumption is enabled")
	}

	return cfg, nil
}
