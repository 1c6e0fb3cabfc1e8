package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// BcryptCost of 0 selects bcrypt.DefaultCost.
	BcryptCost int `env:"BCRYPT_COST, default=0"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Identity IdentityConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=ticketing"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	LockTTL  time.Duration `env:"LOCK_TTL,       default=10s"`
}

// IdentityConfig points at the Keycloak realm mirrored by the service.
type IdentityConfig struct {
	BaseURL      string        `env:"IDP_BASE_URL,     default=http://localhost:8180"`
	Realm        string        `env:"IDP_REALM,        default=ticketing"`
	ClientID     string        `env:"IDP_CLIENT_ID,    default=user-service"`
	ClientSecret string        `env:"IDP_CLIENT_SECRET"`
	Timeout      time.Duration `env:"IDP_TIMEOUT,      default=5s"`
	Async        bool          `env:"IDP_ASYNC,        default=true"`
	Workers      int           `env:"IDP_WORKERS,      default=4"`
	MaxAttempts  int           `env:"IDP_MAX_ATTEMPTS, default=3"`
}

// IsProduction reports whether ENV selects production behaviour (JSON logs).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through lookuper, which lets tests supply a
// fixed environment.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
