package authshield

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authshield.yaml")
	yaml := `
limiter:
  backend: redis
  max_attempts: 3
  window: 10m
  reset_on_success: false
password:
  min_strength_score: 4
tokens:
  session_ttl: 2h
simulated_latency: 250ms
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Limiter.Backend)
	assert.Equal(t, 3, cfg.Limiter.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Limiter.Window)
	assert.False(t, cfg.Limiter.ResetOnSuccess)
	assert.Equal(t, "asla", cfg.Limiter.RedisPrefix)
	assert.Equal(t, 4, cfg.Password.MinStrengthScore)
	assert.Equal(t, uint32(65536), cfg.Password.Memory)
	assert.Equal(t, 2*time.Hour, cfg.Tokens.SessionTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.SimulatedLatency)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("AUTHSHIELD_LIMITER_MAX_ATTEMPTS", "7")
	t.Setenv("AUTHSHIELD_LIMITER_WINDOW", "1h")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Limiter.MaxAttempts)
	assert.Equal(t, time.Hour, cfg.Limiter.Window)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limiter:\n  max_attempts: 0\n"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxAttempts")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
