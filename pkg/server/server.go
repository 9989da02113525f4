// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getlens/lens/pkg/bi"
	"github.com/getlens/lens/pkg/cache"
	"github.com/getlens/lens/pkg/config"
	"github.com/getlens/lens/pkg/gateway"
	"github.com/getlens/lens/pkg/logger"
	"github.com/getlens/lens/pkg/observability"
	"github.com/getlens/lens/pkg/pipeline"
)

// Reader is the metadata-store read surface the HTTP layer exposes.
type Reader interface {
	Get(ctx context.Context, id int64) (*bi.Question, error)
	List(ctx context.Context, offset, limit int) ([]bi.Question, error)
	InsightsFor(ctx context.Context, id int64) ([]bi.Insight, error)
}

// Server hosts the REST API.
type Server struct {
	pipeline *pipeline.Pipeline
	reader   Reader
	cache    *cache.Cache
	gateway  *gateway.Gateway
	metrics  *observability.PrometheusMetrics
	httpSrv  *http.Server
	logger   *slog.Logger
}

// New builds a Server. reader may be nil when the metadata store is
// unconfigured; the read endpoints then return 503.
func New(cfg config.ServerConfig, p *pipeline.Pipeline, reader Reader, c *cache.Cache,
	g *gateway.Gateway, metrics *observability.PrometheusMetrics) *Server {
	s := &Server{
		pipeline: p,
		reader:   reader,
		cache:    c,
		gateway:  g,
		metrics:  metrics,
		logger:   logger.GetLogger(),
	}

	s.httpSrv = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	return s
}

// Router assembles the route table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/questions", s.handleProcess)
		r.Get("/questions", s.handleListQuestions)
		r.Get("/questions/{id}", s.handleGetQuestion)
		r.Get("/questions/{id}/insights", s.handleQuestionInsights)
		r.Get("/cache/stats", s.handleCacheStats)
		r.Get("/llm/cost", s.handleLLMCost)
	})

	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpSrv.Addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"elapsed", time.Since(start))
	})
}
