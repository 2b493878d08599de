// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty until DB is wired.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPublicKey is the PEM-encoded public key (RSA or ECDSA) or path to file,
	// used to verify platform access tokens. Issuance lives in the platform auth
	// service.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the expected iss claim (e.g. "gamerie-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the expected aud claim (e.g. "gamerie-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Events (optional). When Kafka brokers are set, committed governance
	// events are emitted to Kafka.
	// EventsKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	EventsKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsKafkaTopic is the Kafka topic for governance events (default gamerie-team-events).
	EventsKafkaTopic string `mapstructure:"EVENTS_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the notification worker to push events (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the notification worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// OTLPEndpoint is the OTLP gRPC endpoint for traces/metrics/logs (e.g.
	// localhost:4317). Empty disables OTel export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP regardless of endpoint scheme.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// PresenceTTL is how long a heartbeat keeps a user online (e.g. "90s").
	PresenceTTL string `mapstructure:"PRESENCE_TTL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "gamerie-auth")
	v.SetDefault("JWT_AUDIENCE", "gamerie-api")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EVENTS_KAFKA_TOPIC", "gamerie-team-events")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "gamerie-teams-worker")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("PRESENCE_TTL", "90s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.Env == "production" && cfg.JWTPublicKey == "" {
		return nil, errors.New("config: JWT_PUBLIC_KEY must be set when APP_ENV=production")
	}

	return &cfg, nil
}

// PresenceTTLDuration parses PresenceTTL as a time.Duration. Returns 90s if unset or invalid.
func (c *Config) PresenceTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.PresenceTTL)
	if err != nil || d <= 0 {
		return 90 * time.Second
	}
	return d
}

// EventsKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event emission is enabled (non-empty list) and to create the producer.
func (c *Config) EventsKafkaBrokersList() []string {
	if c == nil || c.EventsKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.EventsKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
