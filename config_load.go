package authshield

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g.
// AUTHSHIELD_LIMITER_MAX_ATTEMPTS=3.
const EnvPrefix = "AUTHSHIELD"

// LoadConfig reads path (YAML, JSON or TOML by extension) over DefaultConfig
// and applies AUTHSHIELD_* environment overrides. An empty path loads
// defaults plus environment only. Durations accept Go duration strings.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v, defaultConfig())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Join(errors.New("invalid config"), err)
	}
	return cfg, nil
}

// registerDefaults makes every key known to viper so AutomaticEnv can
// override keys absent from the file.
func registerDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("limiter.backend", string(cfg.Limiter.Backend))
	v.SetDefault("limiter.max_attempts", cfg.Limiter.MaxAttempts)
	v.SetDefault("limiter.window", cfg.Limiter.Window)
	v.SetDefault("limiter.reset_on_success", cfg.Limiter.ResetOnSuccess)
	v.SetDefault("limiter.redis_prefix", cfg.Limiter.RedisPrefix)
	v.SetDefault("limiter.prune_interval", cfg.Limiter.PruneInterval)

	v.SetDefault("password.memory", cfg.Password.Memory)
	v.SetDefault("password.time", cfg.Password.Time)
	v.SetDefault("password.parallelism", cfg.Password.Parallelism)
	v.SetDefault("password.salt_length", cfg.Password.SaltLength)
	v.SetDefault("password.key_length", cfg.Password.KeyLength)
	v.SetDefault("password.max_password_bytes", cfg.Password.MaxPasswordBytes)
	v.SetDefault("password.min_strength_score", cfg.Password.MinStrengthScore)

	v.SetDefault("tokens.backend", string(cfg.Tokens.Backend))
	v.SetDefault("tokens.redis_prefix", cfg.Tokens.RedisPrefix)
	v.SetDefault("tokens.session_ttl", cfg.Tokens.SessionTTL)
	v.SetDefault("tokens.verification_ttl", cfg.Tokens.VerificationTTL)

	v.SetDefault("audit.enabled", cfg.Audit.Enabled)
	v.SetDefault("audit.buffer_size", cfg.Audit.BufferSize)
	v.SetDefault("audit.drop_if_full", cfg.Audit.DropIfFull)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.enable_latency_histograms", cfg.Metrics.EnableLatencyHistograms)

	v.SetDefault("simulated_latency", cfg.SimulatedLatency)
}
