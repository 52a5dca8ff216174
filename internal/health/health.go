// Package health provides a simple HTTP health check endpoint.
//
// Docker and Kubernetes use /healthz for liveness and /readyz for readiness.
// Both bodies also report where the current prices come from and how many
// sessions are open.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Status is extra detail reported alongside the health state.
type Status struct {
	Prices   string `json:"prices"`
	Sessions int64  `json:"sessions"`
}

// Reporter produces the current Status.
type Reporter func() Status

// Server is a lightweight HTTP server that exposes /healthz and /readyz.
type Server struct {
	port   int
	ready  atomic.Bool
	report Reporter
	server *http.Server
}

// New creates a new health check server. report may be nil.
func New(port int, report Reporter) *Server {
	return &Server{port: port, report: report}
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Handler returns the health routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.serveStatus)
	mux.HandleFunc("GET /readyz", s.serveStatus)
	return mux
}

func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.report != nil {
		st := s.report()
		body["prices"] = st.Prices
		body["sessions"] = st.Sessions
	}

	w.Header().Set("Content-Type", "application/json")
	if !s.ready.Load() {
		body["status"] = "not_ready"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(body)
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
