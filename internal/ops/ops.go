// Package ops serves the bot's health check and Prometheus metrics.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Health reports the live state shown on /healthz
type Health interface {
	Len() int
}

// HealthStatus is the /healthz payload
type HealthStatus struct {
	Status         string `json:"status"`
	LinkedAccounts int    `json:"linked_accounts"`
	Uptime         string `json:"uptime"`
}

// Server exposes /healthz and /metrics
type Server struct {
	httpServer *http.Server
}

// NewRouter builds the ops routes
func NewRouter(health Health, gatherer prometheus.Gatherer, started time.Time) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{
			Status:         "ok",
			LinkedAccounts: health.Len(),
			Uptime:         time.Since(started).Truncate(time.Second).String(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			http.Error(w, "failed to encode health", http.StatusInternalServerError)
		}
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// NewServer creates an ops server listening on addr
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in the background until Shutdown is called
func (s *Server) Start() {
	go func() {
		slog.Info("Ops server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Ops server stopped", "error", err)
		}
	}()
}

// Shutdown stops the server, waiting up to the context deadline
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
