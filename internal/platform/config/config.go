// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures gateway-level configuration.
type Server struct {
	Addr            string        `env:"AGORA_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"AGORA_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// JWTSigningKey signs gateway session tokens. The default exists for
	// development only and must be overridden in production.
	JWTSigningKey string `env:"AGORA_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"AGORA_JWT_ISSUER" envDefault:"agora"`
	SessionTTL    time.Duration `env:"AGORA_SESSION_TTL" envDefault:"24h"`

	// BackendBaseURL is the marketplace API this gateway fronts.
	BackendBaseURL string        `env:"AGORA_BACKEND_URL" envDefault:"http://localhost:3000"`
	BackendTimeout time.Duration `env:"AGORA_BACKEND_TIMEOUT" envDefault:"10s"`

	// AdminEmail / AdminPasswordHash gate the admin login path. The hash is
	// a bcrypt hash; an empty value disables gateway-local admin login.
	AdminEmail        string `env:"AGORA_ADMIN_EMAIL"`
	AdminPasswordHash string `env:"AGORA_ADMIN_PASSWORD_HASH"`

	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// RedisConfig configures the identity snapshot cache.
// An empty URL means redis is not configured and the in-memory cache is used.
type RedisConfig struct {
	URL          string        `env:"AGORA_REDIS_URL"`
	PoolSize     int           `env:"AGORA_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"AGORA_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"AGORA_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"AGORA_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"AGORA_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// PostgresConfig configures the seller application store.
// An empty URL means postgres is not configured and the in-memory store is used.
type PostgresConfig struct {
	URL string `env:"AGORA_POSTGRES_URL"`
}

// KafkaConfig configures the audit event pipeline.
// An empty broker list disables publishing; events still reach the store.
type KafkaConfig struct {
	Brokers    []string `env:"AGORA_KAFKA_BROKERS"`
	AuditTopic string   `env:"AGORA_AUDIT_TOPIC" envDefault:"agora.audit"`
}

// FromEnv parses the full server configuration from the environment.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
