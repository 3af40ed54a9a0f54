// Package health exposes the /healthz liveness probe and /metrics scrape
// endpoint every long-running bot run needs, over a github.com/go-chi/chi/v5
// router. Grounded on Emibrown-HLS-Playlist-Orchestrator/cmd/server/main.go's
// chi.NewRouter/request-logging-middleware/http.Server wiring, with the
// /metrics handler itself grounded on that repo's internal/platform/metrics
// package (promhttp.HandlerFor over a *prometheus.Registry).
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/satori-video/streams/metric"
)

// Status reports the current health of a bot run for the /healthz handler.
// Healthy is false once the run has observed a fatal pipeline error or has
// finished; Detail carries a short human-readable reason.
type Status struct {
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// StatusFunc is polled on every /healthz request. A nil StatusFunc reports
// healthy unconditionally, matching a bot run with nothing else to check.
type StatusFunc func() Status

// Server is the health/metrics HTTP surface for a bot run.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	logger     *slog.Logger
}

// NewServer builds a chi router serving /healthz and /metrics and wraps it
// in an *http.Server bound to addr. status is polled for each /healthz
// request; registry backs /metrics. Neither argument is required: a nil
// registry serves an empty metrics page, a nil status always reports healthy.
func NewServer(addr string, registry *metric.Registry, status StatusFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if status == nil {
		status = func() Status { return Status{Healthy: true} }
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthzHandler(status))

	if registry != nil {
		metricsHandler := promhttp.HandlerFor(registry.Prometheus(), promhttp.HandlerOpts{})
		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) { metricsHandler.ServeHTTP(w, req) })
	} else {
		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) { w.WriteHeader(http.StatusNoContent) })
	}

	return &Server{
		httpServer: &http.Server{Addr: addr, Handler: r},
		router:     r,
		logger:     logger,
	}
}

// ServeHTTPForTest dispatches directly into the router without binding a
// socket, so tests can drive /healthz and /metrics with httptest.
func (s *Server) ServeHTTPForTest(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handle registers an additional GET route on the same router, for a
// caller that wants to serve something alongside /healthz and /metrics
// (e.g. a websocket dashboard upgrade) without standing up a second
// listener. Must be called before Start.
func (s *Server) Handle(pattern string, handler http.HandlerFunc) {
	s.router.Get(pattern, handler)
}

func healthzHandler(status StatusFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := status()
		w.Header().Set("Content-Type", "application/json")
		if !s.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(s)
	}
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("health: request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// Start begins serving in a background goroutine, logging and swallowing the
// inevitable http.ErrServerClosed on a clean Shutdown.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("health: server error", "error", err)
		}
	}()
	s.logger.Info("health: listening", "addr", s.httpServer.Addr)
}

// Shutdown drains in-flight requests and stops the server, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
