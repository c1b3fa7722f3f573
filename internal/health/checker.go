// Package health runs periodic liveness probes with recovery hooks, per
// spec.md's ambient health-check expectations: a registry ping and a
// hyperlane adjacency check, on the same named-check-plus-optional-
// recovery shape the teacher's own health checker uses.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/starlane-io/starlane/internal/hyperlane"
	"github.com/starlane-io/starlane/internal/metrics"
	"github.com/starlane-io/starlane/internal/point"
)

// Check defines a single health check with an optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// RegistryPinger is satisfied by a registry backend that can report
// whether its underlying storage connection is still reachable (e.g.
// registry/sqlstore.DB).
type RegistryPinger interface {
	Ping() error
}

// NewChecker builds a health checker with the standard two probes: a
// registry ping, and a hyperlane adjacency check confirming every star in
// expectedPeers still has a live connection in router.
func NewChecker(reg RegistryPinger, router *hyperlane.Router, expectedPeers []point.StarKey) *Checker {
	return &Checker{
		interval: 60 * time.Second,
		checks: []Check{
			{
				Name: "registry",
				CheckFn: func(ctx context.Context) error {
					return reg.Ping()
				},
				RecoverFn: func(ctx context.Context) error {
					return nil // storage backend is expected to reconnect on its own
				},
			},
			{
				Name: "hyperlane",
				CheckFn: func(ctx context.Context) error {
					return checkHyperlaneLiveness(router, expectedPeers)
				},
				RecoverFn: func(ctx context.Context) error {
					return nil // reconnection is the dialing side's responsibility
				},
			},
		},
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.runAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runAll(ctx)
		}
	}
}

func (c *Checker) runAll(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Healthy = false
			s.Error = err.Error()
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
			if check.RecoverFn != nil {
				metrics.HealthRecoveries.WithLabelValues(check.Name).Inc()
				_ = check.RecoverFn(ctx)
			}
		} else {
			s.Healthy = true
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkHyperlaneLiveness(router *hyperlane.Router, expected []point.StarKey) error {
	adjacent := make(map[string]struct{}, len(router.Adjacents()))
	for _, k := range router.Adjacents() {
		adjacent[k.String()] = struct{}{}
	}
	for _, want := range expected {
		if _, ok := adjacent[want.String()]; !ok {
			return fmt.Errorf("health: no live hyperlane to expected peer %s", want)
		}
	}
	return nil
}
