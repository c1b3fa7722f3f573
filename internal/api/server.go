// Package api provides the HTTP observability surface for a running star:
// health, metrics, and status, the same chi-routed server shape the teacher
// uses for its own API, pared down to the ambient endpoints SPEC_FULL.md
// carries regardless of the core's Non-goals around external RPC surfaces.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starlane-io/starlane/internal/health"
	"github.com/starlane-io/starlane/internal/point"
)

// Server is the HTTP observability server for one star.
type Server struct {
	Self       point.StarKey
	Version    string
	Health     *health.Checker
	Prometheus bool // expose /metrics
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"star":   s.Self.String(),
			"status": "running",
		})
	})

	r.Get("/version", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": s.Version})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		statuses := s.Health.Statuses()
		code := http.StatusOK
		if !s.Health.IsHealthy() {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, statuses)
	})

	if s.Prometheus {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
