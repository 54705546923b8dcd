package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrEthical07/authshield"
	"github.com/MrEthical07/authshield/internal/server"
	promexport "github.com/MrEthical07/authshield/metrics/export/prometheus"
)

type serveOptions struct {
	addr            string
	redisAddr       string
	clientCookie    string
	shutdownTimeout time.Duration
}

func newServeCommand(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API on top of an Engine.

The limiter and token store backends come from the config. Setting
--redis-addr (or REDIS_ADDR) is required when either backend is redis.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "redis address; defaults to REDIS_ADDR")
	cmd.Flags().StringVar(&opts.clientCookie, "client-cookie", "", "cookie holding the per-browser client key")
	cmd.Flags().DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	return cmd
}

func runServe(ctx context.Context, root *rootOptions, opts *serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := root.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := root.config()
	if err != nil {
		return err
	}

	builder := authshield.New().WithConfig(cfg).WithLogger(logger).WithAuditSink(authshield.NewZapSink(logger))
	if addr := redisAddr(opts.redisAddr); addr != "" {
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		defer rdb.Close()
		builder = builder.WithRedis(rdb)
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler, err = promexport.Handler(promexport.NewCollector(engine))
		if err != nil {
			return err
		}
	}

	srv := server.New(engine, server.Options{
		Addr:         opts.addr,
		ClientCookie: opts.clientCookie,
		Metrics:      metricsHandler,
		Logger:       logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown did not complete", zap.Error(err))
		return err
	}
	return nil
}

func redisAddr(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("REDIS_ADDR")
}
