package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starlane-io/starlane/internal/health"
	"github.com/starlane-io/starlane/internal/hyperlane"
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/registry/sqlstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := sqlstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("sqlstore.Open() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	self := point.StarKey{Constellation: "sun", Name: "alpha", Index: 0}
	checker := health.NewChecker(db, hyperlane.NewRouter(self), nil)

	return &Server{Self: self, Version: "test", Health: checker, Prometheus: true}
}

func TestServerStatus(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["star"] != "sun:alpha[0]" {
		t.Errorf("star = %q, want %q", body["star"], "sun:alpha[0]")
	}
}

func TestServerVersion(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	s.Handler().ServeHTTP(rr, req)

	var body map[string]string
	_ = json.NewDecoder(rr.Body).Decode(&body)
	if body["version"] != "test" {
		t.Errorf("version = %q, want %q", body["version"], "test")
	}
}

func TestServerHealth(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (no checks have run yet, vacuously healthy)", rr.Code)
	}
}

func TestServerMetricsDisabled(t *testing.T) {
	s := newTestServer(t)
	s.Prometheus = false
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when Prometheus disabled", rr.Code)
	}
}

func TestServerMetricsEnabled(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}
