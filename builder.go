package authshield

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/authshield/internal/audit"
	"github.com/MrEthical07/authshield/internal/limiters"
	"github.com/MrEthical07/authshield/internal/stores"
	"github.com/MrEthical07/authshield/password"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles an Engine. A Builder is single-use: Build fails on the
// second call.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	logger *zap.Logger
	now    func() time.Time

	userProvider UserProvider
	tokenStore   TokenStore
	auditSink    AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the client used when Limiter.Backend or Tokens.Backend
// is "redis".
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithTokenStore overrides the store selected by Tokens.Backend.
func (b *Builder) WithTokenStore(store TokenStore) *Builder {
	b.tokenStore = store
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock injects the time source shared by the limiter, token store and
// verification tokens. Tests use it to step through the attempt window.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and wires every component.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.redis == nil {
		if cfg.Limiter.Backend == BackendRedis {
			return nil, errors.New("redis limiter backend requires redis client")
		}
		if cfg.Tokens.Backend == BackendRedis && b.tokenStore == nil {
			return nil, errors.New("redis token backend requires redis client")
		}
	}

	hasher, err := password.NewHasher(cfg.Password.hasherConfig())
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}
	dummyHash, err := hasher.Hash("authshield unknown account")
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		config:      cfg,
		logger:      logger.Named("authshield"),
		now:         now,
		users:       b.userProvider,
		hasher:      hasher,
		dummyHash:   dummyHash,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		metrics:     NewMetrics(cfg.Metrics),
		stopJanitor: make(chan struct{}),
	}
	if e.users == nil {
		e.users = NewMemoryUserProvider()
	}

	attemptCfg := limiters.AttemptConfig{
		MaxAttempts: cfg.Limiter.MaxAttempts,
		Window:      cfg.Limiter.Window,
		Now:         now,
	}
	switch cfg.Limiter.Backend {
	case BackendRedis:
		e.limiter = redisAttemptStore{limiter: limiters.NewRedisAttemptLimiter(b.redis, cfg.Limiter.RedisPrefix, attemptCfg)}
	default:
		mem := limiters.NewAttemptLimiter(attemptCfg)
		e.limiter = memoryAttemptStore{limiter: mem}
		if cfg.Limiter.PruneInterval > 0 {
			e.janitorWG.Add(1)
			go e.runJanitor(mem, cfg.Limiter.PruneInterval)
		}
	}

	switch {
	case b.tokenStore != nil:
		e.tokens = b.tokenStore
	case cfg.Tokens.Backend == BackendRedis:
		e.tokens = NewRedisTokenStore(b.redis, cfg.Tokens.RedisPrefix, cfg.Tokens.SessionTTL)
	default:
		e.tokens = NewMemoryTokenStore(cfg.Tokens.SessionTTL, now)
	}

	if cfg.Tokens.Backend == BackendRedis && b.redis != nil {
		e.verifications = stores.NewRedisVerificationStore(b.redis, "")
	} else {
		e.verifications = stores.NewMemoryVerificationStore()
	}

	e.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	e.logger.Info("engine built",
		zap.String("limiter_backend", string(cfg.Limiter.Backend)),
		zap.Int("max_attempts", cfg.Limiter.MaxAttempts),
		zap.Duration("window", cfg.Limiter.Window),
		zap.String("token_backend", string(cfg.Tokens.Backend)),
		zap.Bool("audit", cfg.Audit.Enabled),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)

	b.built = true
	return e, nil
}
