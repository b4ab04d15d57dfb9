package redis

import "time"

// RedisConfig contains configuration for constructing rueidis clients and lockers.
//
// URL is a standard Redis URI, for example:
//
//   - Single:  redis://:password@localhost:6379/0
//   - TLS:     rediss://:password@my-redis.example.com:6379/0
//   - Cluster: redis://:password@host1:6379/0?addr=host2:6379&addr=host3:6379
type RedisConfig struct {
	// Required: Redis connection URL (redis:// or rediss://).
	URL string `env:"URL" envDefault:"redis://:redis@localhost:6379/0"`

	// Optional: client name visible in CLIENT LIST, etc.
	ClientName string `env:"CLIENT_NAME" envDefault:"taskboard"`

	// SkipTLSVerify disables TLS certificate verification. Only use this in trusted
	// environments (e.g. some AWS ElastiCache setups with non-standard certs).
	SkipTLSVerify bool `env:"SKIP_TLS_VERIFY"`

	// RequireTLS enforces the use of rediss://.
	RequireTLS bool `env:"REQUIRE_TLS"`

	DisableRetry     bool          `env:"DISABLE_RETRY"`
	ConnWriteTimeout time.Duration `env:"CONN_WRITE_TIMEOUT"`

	// Enable OpenTelemetry integration via rueidisotel.
	EnableOtel bool `env:"ENABLE_OTEL"`

	// --- rueidislock ---

	// LockKeyPrefix namespaces every lock key.
	LockKeyPrefix string `env:"LOCK_KEY_PREFIX" envDefault:"taskboard:lock:"`
	// LockKeyValidity is how long a lock survives without being extended
	// (e.g. the holder crashed).
	LockKeyValidity time.Duration `env:"LOCK_KEY_VALIDITY" envDefault:"5s"`
	// LockKeyMajority must be 1 for a single redis instance.
	LockKeyMajority int32 `env:"LOCK_KEY_MAJORITY" envDefault:"1"`
	// NoLoopTracking can be enabled when all redis nodes are >= 7.0.5.
	LockNoLoopTracking bool `env:"LOCK_NO_LOOP_TRACKING" envDefault:"true"`
}
