package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// DefaultJWTSecret is the documented development-only signing secret.
// Startup aborts when the production profile still uses it.
const DefaultJWTSecret = "insecure-dev-secret-change-me-0123456789"

const minJWTSecretBytes = 32

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET"`

	AccessTokenTTLMin  int `env:"ACCESS_TOKEN_TTL_MIN,  default=15"`
	RefreshTokenTTLMin int `env:"REFRESH_TOKEN_TTL_MIN, default=1440"`

	RateLimit RateLimitConfig
	Webhook   WebhookConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

type RateLimitConfig struct {
	WindowSec   int   `env:"RATE_LIMIT_WINDOW_SEC,   default=60"`
	MaxAttempts int64 `env:"RATE_LIMIT_MAX_ATTEMPTS, default=5"`
	// Backend selects the counter store: "memory" for single-instance
	// deployments, "redis" when throttling must be shared across replicas.
	Backend string `env:"RATE_LIMIT_BACKEND, default=memory"`
}

type WebhookConfig struct {
	// Secrets is a "PROVIDER=secret,PROVIDER2=secret" list.
	Secrets string `env:"WEBHOOK_SECRETS"`
	// Strict rejects callbacks from providers without a configured secret.
	Strict bool `env:"WEBHOOK_STRICT, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=backoffice"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
// An unset JWT_SECRET falls back to the development default so that local
// setups work out of the box; Validate refuses that default in production.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = DefaultJWTSecret
	}
	return &cfg, nil
}

// IsProduction reports whether the production profile is active.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate performs the fatal startup checks. Callers must treat any
// returned error as unrecoverable: a service with a weak or guessable
// signing key must not come up.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < minJWTSecretBytes {
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes, got %d", minJWTSecretBytes, len(c.JWTSecret))
	}
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return errors.New("config: JWT_SECRET is the documented default; refusing to start in production")
	}
	if c.RateLimit.WindowSec <= 0 || c.RateLimit.MaxAttempts <= 0 {
		return errors.New("config: rate limit window and max attempts must be positive")
	}
	switch c.RateLimit.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown rate limit backend %q", c.RateLimit.Backend)
	}
	return nil
}
