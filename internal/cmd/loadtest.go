package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrEthical07/authshield/internal/limiters"
)

type loadtestOptions struct {
	identifiers int
	concurrency int
	ops         int
	backend     string
	redisAddr   string
	prefix      string
}

// attemptBackend is what both limiter implementations look like to the
// load generator.
type attemptBackend interface {
	IsBlocked(ctx context.Context, id string) (bool, error)
	RecordAttempt(ctx context.Context, id string) error
}

type memoryBackend struct{ l *limiters.AttemptLimiter }

func (m memoryBackend) IsBlocked(_ context.Context, id string) (bool, error) {
	return m.l.IsBlocked(id), nil
}

func (m memoryBackend) RecordAttempt(_ context.Context, id string) error {
	m.l.RecordAttempt(id)
	return nil
}

type redisBackend struct{ l *limiters.RedisAttemptLimiter }

func (r redisBackend) IsBlocked(ctx context.Context, id string) (bool, error) {
	return r.l.IsBlocked(ctx, id)
}

func (r redisBackend) RecordAttempt(ctx context.Context, id string) error {
	_, err := r.l.RecordAttempt(ctx, id)
	return err
}

func newLoadtestCommand(root *rootOptions) *cobra.Command {
	opts := &loadtestOptions{}

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Hammer the attempt limiter from many goroutines",
		Long: `Run a record phase and a check phase against the attempt limiter.

With --backend=redis and no --redis-addr or REDIS_ADDR, an embedded
miniredis is started.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := root.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return runLoadtest(cmd.Context(), cmd.OutOrStdout(), logger, opts)
		},
	}
	cmd.Flags().IntVar(&opts.identifiers, "identifiers", 10000, "number of distinct identifiers")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 64, "number of concurrent workers")
	cmd.Flags().IntVar(&opts.ops, "ops", 100000, "operations per phase (record + check)")
	cmd.Flags().StringVar(&opts.backend, "backend", "memory", "limiter backend: memory or redis")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "redis address; defaults to REDIS_ADDR, then miniredis")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "asla-loadtest", "redis key prefix")
	return cmd
}

func runLoadtest(ctx context.Context, out io.Writer, logger *zap.Logger, opts *loadtestOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.identifiers <= 0 || opts.concurrency <= 0 || opts.ops <= 0 {
		return errors.New("identifiers, concurrency, and ops must be > 0")
	}

	cfg := limiters.AttemptConfig{MaxAttempts: limiters.DefaultMaxAttempts, Window: limiters.DefaultWindow}

	var backend attemptBackend
	switch opts.backend {
	case "memory":
		backend = memoryBackend{l: limiters.NewAttemptLimiter(cfg)}
	case "redis":
		client, cleanup, err := loadtestRedis(logger, opts.redisAddr)
		if err != nil {
			return err
		}
		defer cleanup()
		backend = redisBackend{l: limiters.NewRedisAttemptLimiter(client, opts.prefix, cfg)}
	default:
		return fmt.Errorf("unknown backend %q", opts.backend)
	}

	ids := lo.Times(opts.identifiers, func(i int) string {
		return fmt.Sprintf("user-%d@loadtest.local", i)
	})

	logger.Info("loadtest starting",
		zap.String("backend", opts.backend),
		zap.Int("identifiers", opts.identifiers),
		zap.Int("concurrency", opts.concurrency),
		zap.Int("ops", opts.ops),
	)

	recordStats := runPhase(opts.ops, opts.concurrency, 7919, func(r *rand.Rand) error {
		return backend.RecordAttempt(ctx, ids[r.Intn(len(ids))])
	})

	var blocked int64
	checkStats := runPhase(opts.ops, opts.concurrency, 6151, func(r *rand.Rand) error {
		b, err := backend.IsBlocked(ctx, ids[r.Intn(len(ids))])
		if b {
			atomic.AddInt64(&blocked, 1)
		}
		return err
	})

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "record", recordStats)
	printStats(out, "check", checkStats)
	fmt.Fprintf(out, "blocked checks: %d\n", blocked)
	return nil
}

func loadtestRedis(logger *zap.Logger, flagAddr string) (redis.UniversalClient, func(), error) {
	addr := redisAddr(flagAddr)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		logger.Info("using miniredis", zap.String("addr", mr.Addr()))
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	logger.Info("using redis", zap.String("addr", addr))
	return client, func() { _ = client.Close() }, nil
}

// runPhase spreads ops calls of op over concurrency workers and records the
// latency of each call.
func runPhase(ops, concurrency int, seedStep int64, op func(*rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seedStep))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(out io.Writer, name string, s phaseStats) {
	fmt.Fprintf(out, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
