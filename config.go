package authshield

import (
	"errors"
	"time"

	"github.com/MrEthical07/authshield/internal/limiters"
	"github.com/MrEthical07/authshield/password"
)

// Backend selects where limiter records or tokens live.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)

// Config is the full Engine configuration. Build clones it, so mutating a
// Config after Build has no effect on the Engine.
type Config struct {
	Limiter          LimiterConfig  `mapstructure:"limiter"`
	Password         PasswordConfig `mapstructure:"password"`
	Tokens           TokenConfig    `mapstructure:"tokens"`
	Audit            AuditConfig    `mapstructure:"audit"`
	Metrics          MetricsConfig  `mapstructure:"metrics"`
	SimulatedLatency time.Duration  `mapstructure:"simulated_latency"`
}

/*
====================================
LIMITER CONFIG
====================================
*/

// LimiterConfig controls the failed-login attempt limiter.
type LimiterConfig struct {
	Backend        Backend       `mapstructure:"backend"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	Window         time.Duration `mapstructure:"window"`
	ResetOnSuccess bool          `mapstructure:"reset_on_success"`
	RedisPrefix    string        `mapstructure:"redis_prefix"`
	// PruneInterval starts a background janitor for the memory backend when > 0.
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds Argon2id costs (Memory in KiB) and the signup
// strength floor. MinStrengthScore 0 disables the floor.
type PasswordConfig struct {
	Memory           uint32 `mapstructure:"memory"`
	Time             uint32 `mapstructure:"time"`
	Parallelism      uint8  `mapstructure:"parallelism"`
	SaltLength       uint32 `mapstructure:"salt_length"`
	KeyLength        uint32 `mapstructure:"key_length"`
	MaxPasswordBytes int    `mapstructure:"max_password_bytes"`
	MinStrengthScore int    `mapstructure:"min_strength_score"`
}

func (c PasswordConfig) hasherConfig() password.Config {
	return password.Config{
		Memory:           c.Memory,
		Time:             c.Time,
		Parallelism:      c.Parallelism,
		SaltLength:       c.SaltLength,
		KeyLength:        c.KeyLength,
		MaxPasswordBytes: c.MaxPasswordBytes,
	}
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls opaque token storage. SessionTTL bounds tokens
// stored without "remember me"; persistent tokens never expire on their own.
type TokenConfig struct {
	Backend         Backend       `mapstructure:"backend"`
	RedisPrefix     string        `mapstructure:"redis_prefix"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	VerificationTTL time.Duration `mapstructure:"verification_ttl"`
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

type AuditConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	BufferSize int  `mapstructure:"buffer_size"`
	DropIfFull bool `mapstructure:"drop_if_full"`
}

type MetricsConfig struct {
	Enabled                 bool `mapstructure:"enabled"`
	EnableLatencyHistograms bool `mapstructure:"enable_latency_histograms"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Limiter: LimiterConfig{
			Backend:        BackendMemory,
			MaxAttempts:    limiters.DefaultMaxAttempts,
			Window:         limiters.DefaultWindow,
			ResetOnSuccess: true,
			RedisPrefix:    "asla",
		},
		Password: PasswordConfig{
			Memory:           65536,
			Time:             3,
			Parallelism:      2,
			SaltLength:       16,
			KeyLength:        32,
			MaxPasswordBytes: password.DefaultMaxPasswordBytes,
		},
		Tokens: TokenConfig{
			Backend:         BackendMemory,
			RedisPrefix:     "astk",
			SessionTTL:      24 * time.Hour,
			VerificationTTL: 24 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// Limiter
	switch c.Limiter.Backend {
	case BackendMemory, BackendRedis:
	default:
		return errors.New("Limiter Backend must be 'memory' or 'redis'")
	}
	if c.Limiter.MaxAttempts <= 0 {
		return errors.New("Limiter MaxAttempts must be > 0")
	}
	if c.Limiter.Window <= 0 {
		return errors.New("Limiter Window must be > 0")
	}
	if c.Limiter.Window < time.Millisecond {
		return errors.New("Limiter Window must be >= 1ms")
	}
	if c.Limiter.PruneInterval < 0 {
		return errors.New("Limiter PruneInterval must be >= 0")
	}
	if c.Limiter.Backend == BackendRedis && c.Limiter.RedisPrefix == "" {
		return errors.New("Limiter RedisPrefix must be set for the redis backend")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MaxPasswordBytes < 0 {
		return errors.New("Password MaxPasswordBytes must be >= 0")
	}
	if c.Password.MinStrengthScore < 0 || c.Password.MinStrengthScore > password.MaxStrengthScore {
		return errors.New("Password MinStrengthScore must be between 0 and 6")
	}

	// Tokens
	switch c.Tokens.Backend {
	case BackendMemory, BackendRedis:
	default:
		return errors.New("Tokens Backend must be 'memory' or 'redis'")
	}
	if c.Tokens.SessionTTL <= 0 {
		return errors.New("Tokens SessionTTL must be > 0")
	}
	if c.Tokens.VerificationTTL <= 0 {
		return errors.New("Tokens VerificationTTL must be > 0")
	}
	if c.Tokens.Backend == BackendRedis && c.Tokens.RedisPrefix == "" {
		return errors.New("Tokens RedisPrefix must be set for the redis backend")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.SimulatedLatency < 0 {
		return errors.New("SimulatedLatency must be >= 0")
	}

	return nil
}
