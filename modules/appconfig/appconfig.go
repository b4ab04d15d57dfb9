package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"taskboard/modules/auth"
	"taskboard/modules/db/postgres"
	"taskboard/modules/db/redis"
	"taskboard/modules/middleware"
	"taskboard/modules/telemetry"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	LockRedis = "redis"
	LockLocal = "local"
)

type Config struct {
	Env string `env:"ENV" envDefault:"dev"`

	HTTP HTTPConfig `envPrefix:"HTTP_"`

	// --- profile service ----
	StoreBackend   string        `env:"STORE_BACKEND" envDefault:"postgres"`
	LockBackend    string        `env:"LOCK_BACKEND" envDefault:"redis"`
	LockTimeout    time.Duration `env:"LOCK_TIMEOUT" envDefault:"5s"`
	MigrateOnStart bool          `env:"MIGRATE_ON_START" envDefault:"true"`
	RevealNotFound bool          `env:"PROFILE_REVEAL_NOT_FOUND" envDefault:"false"`

	// Seed creates one user at startup on the memory store.
	Seed SeedConfig `envPrefix:"SEED_USER_"`

	// --- core infra ----
	Auth     auth.Config             `envPrefix:"AUTH_"`
	Redis    redis.RedisConfig       `envPrefix:"REDIS_"`
	Postgres postgres.PostgresConfig `envPrefix:"POSTGRES_"`

	// --- middlewares ----
	RateLimit middleware.RateLimitConfig `envPrefix:"RATE_LIMIT_"`

	// --- otel ----
	// since it has special naming conventions, we do not use prefix here
	Otel telemetry.Config
}

type HTTPConfig struct {
	Host         string        `env:"HOST" envDefault:"0.0.0.0"`
	Port         int           `env:"PORT" envDefault:"5000"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
}

type SeedConfig struct {
	Name     string `env:"NAME" envDefault:"Demo User"`
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
}

// Enabled reports whether a seed user was configured.
func (s SeedConfig) Enabled() bool {
	return s.Email != ""
}

// Load reads an optional .env file and then parses the process environment.
// Variables already present in the environment win over the .env file.
func Load(dotenvFiles ...string) (*Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("appconfig: load dotenv: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(c *Config) error {
	var errs []error

	switch c.StoreBackend {
	case StorePostgres:
	case StoreMemory:
		if c.Env == "prod" {
			errs = append(errs, errors.New("appconfig: memory store is not allowed in prod"))
		}
	default:
		errs = append(errs, fmt.Errorf("appconfig: unknown STORE_BACKEND %q", c.StoreBackend))
	}

	switch c.LockBackend {
	case LockRedis, LockLocal:
	default:
		errs = append(errs, fmt.Errorf("appconfig: unknown LOCK_BACKEND %q", c.LockBackend))
	}

	if c.Seed.Enabled() && c.Seed.Password == "" {
		errs = append(errs, errors.New("appconfig: SEED_USER_PASSWORD is required with SEED_USER_EMAIL"))
	}
	if c.LockTimeout <= 0 {
		errs = append(errs, errors.New("appconfig: LOCK_TIMEOUT must be positive"))
	}
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("appconfig: AUTH_SECRET is required"))
	}
	if c.RateLimit.Enabled {
		switch c.RateLimit.Backend {
		case middleware.RateLimitBackendMemory:
			if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
				errs = append(errs, errors.New("appconfig: RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
			}
		case middleware.RateLimitBackendRedis:
			if c.RateLimit.WindowLimit <= 0 || c.RateLimit.Window <= 0 {
				errs = append(errs, errors.New("appconfig: RATE_LIMIT_WINDOW_LIMIT and RATE_LIMIT_WINDOW must be positive"))
			}
		default:
			errs = append(errs, fmt.Errorf("appconfig: unknown RATE_LIMIT_BACKEND %q", c.RateLimit.Backend))
		}
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port >= 1<<16 {
		errs = append(errs, fmt.Errorf("appconfig: invalid HTTP_PORT %d", c.HTTP.Port))
	}

	return errors.Join(errs...)
}
