// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/pdiddy/quadrature-engine/pkg/types"
)

// ServiceName identifies the service in traces and logs.
const ServiceName = "quadrature-engine"

// Analyzer runs one analysis. *analysis.Analyzer satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResponse, error)
}

// Recorder stores completed analyses. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, req types.AnalysisRequest, resp *types.AnalysisResponse) (string, error)
}

// Server is the HTTP front end. Handlers hold no per-request shared state
// beyond the rate limiter, so a Server serves concurrent requests.
type Server struct {
	cfg      types.ServerConfig
	analyzer Analyzer
	recorder Recorder
	limiter  *rate.Limiter
	engine   *gin.Engine
}

// Option customizes a Server.
type Option func(*Server)

// WithRecorder journals every successful analysis.
func WithRecorder(r Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// DefaultConfig returns the service defaults.
func DefaultConfig() types.ServerConfig {
	return types.ServerConfig{
		Addr:           ":8000",
		AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		RequestTimeout: 30 * time.Second,
		RateLimit:      20,
		RateBurst:      40,
	}
}

// New builds the router. Zero fields of cfg take their defaults, except
// RateLimit where zero disables limiting.
func New(cfg types.ServerConfig, analyzer Analyzer, opts ...Option) *Server {
	d := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = d.Addr
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = d.AllowedOrigins
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = d.RequestTimeout
	}

	s := &Server{cfg: cfg, analyzer: analyzer}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = int(cfg.RateLimit) + 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(ServiceName))
	r.Use(requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/analyze", s.rateLimit(), s.handleAnalyze)
	r.GET("/methods", s.handleMethods)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine = r
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to five seconds.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", s.cfg.Addr, "origins", s.cfg.AllowedOrigins)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	slog.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
