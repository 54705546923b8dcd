package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/MrEthical07/authshield"
	"github.com/MrEthical07/authshield/middleware"
)

// Options configures a Server. A nil Metrics handler leaves /metrics unmounted.
type Options struct {
	Addr         string
	ClientCookie string
	Metrics      http.Handler
	Logger       *zap.Logger
}

// Server is the demo HTTP surface over an Engine.
type Server struct {
	router *chi.Mux
	server *http.Server
	engine *authshield.Engine
	logger *zap.Logger
	addr   string
}

func New(engine *authshield.Engine, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s := &Server{
		router: r,
		engine: engine,
		logger: logger,
		addr:   opts.Addr,
	}
	s.registerRoutes(opts)
	return s
}

func (s *Server) registerRoutes(opts Options) {
	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	// Strength scoring needs no client state.
	s.router.Post("/strength", s.handleStrength)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.ClientContext(opts.ClientCookie))

		r.With(middleware.LoginThrottle(s.engine, middleware.JSONEmailKey)).Post("/login", s.handleLogin)
		r.Post("/signup", s.handleSignup)
		r.Post("/logout", s.handleLogout)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/me", s.handleMe)
		r.Post("/password-reset", s.handlePasswordReset)
		r.Post("/verify-email", s.handleVerifyEmail)
	})
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info("starting http server", zap.String("addr", s.addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}
