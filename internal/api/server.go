package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/spigell/mentor-matcher/internal/matching"
	"github.com/spigell/mentor-matcher/internal/profiles"
)

const (
	defaultAddr         = ":8080"
	defaultMaxBodyBytes = 1 << 20
	shutdownTimeout     = 10 * time.Second
)

// Config holds HTTP server settings.
type Config struct {
	Addr           string        `mapstructure:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed-origins"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	MaxBodyBytes   int64         `mapstructure:"max-body-bytes"`
}

// PoolLoader produces a fresh, already filtered pool snapshot.
type PoolLoader func(ctx context.Context) (*profiles.Candidates, error)

// Server serves ranking requests against a shared engine and pool snapshot.
// The snapshot is swapped atomically and never modified in place.
type Server struct {
	config  Config
	engine  *matching.Engine
	pool    atomic.Pointer[profiles.Candidates]
	logger  *zap.Logger
	metrics *metrics
	router  *chi.Mux
}

func NewServer(cfg Config, engine *matching.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		config:  cfg,
		engine:  engine,
		logger:  logger,
		metrics: newMetrics(),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

// SetPool publishes a new pool snapshot. The caller must not modify c afterwards.
func (s *Server) SetPool(c *profiles.Candidates) {
	s.pool.Store(c)
	s.metrics.poolSize.Set(float64(c.Len()))
}

// Pool returns the current snapshot, nil when nothing was loaded yet.
func (s *Server) Pool() *profiles.Candidates {
	return s.pool.Load()
}

// Reload replaces the snapshot with the loader's result. On failure the
// previous snapshot stays in place.
func (s *Server) Reload(ctx context.Context, load PoolLoader) error {
	c, err := load(ctx)
	if err != nil {
		s.metrics.poolReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("reloading pool: %w", err)
	}
	s.SetPool(c)
	s.metrics.poolReloads.WithLabelValues("ok").Inc()
	s.logger.Info("candidate pool loaded", zap.Int("count", c.Len()))
	return nil
}

// WatchPool reloads the pool every interval until ctx is done.
func (s *Server) WatchPool(ctx context.Context, interval time.Duration, load PoolLoader) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Reload(ctx, load); err != nil {
				s.logger.Warn("keeping previous pool", zap.Error(err))
			}
		}
	}
}

// Run listens on the configured address until ctx is cancelled, then shuts
// the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.config.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Post("/matches", s.handleMatches)
	r.Get("/candidates/{id}", s.handleGetCandidate)

	s.router = r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			elapsed := time.Since(start)

			s.metrics.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
			s.metrics.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

			s.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", elapsed),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote_addr", r.RemoteAddr),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
