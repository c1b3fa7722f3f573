// Package runner wires one star's full runtime together: registry storage,
// identity, the hyperlane listener and outbound peer dials, the health
// checker, and the HTTP observability server — the same top-level
// composition the teacher's own daemon.Daemon performs for its process,
// generalized from one inference node to one routing star.
package runner

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/starlane-io/starlane/internal/api"
	"github.com/starlane-io/starlane/internal/config"
	"github.com/starlane-io/starlane/internal/health"
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/registry/sqlstore"
	"github.com/starlane-io/starlane/internal/security"
	"github.com/starlane-io/starlane/internal/star"
)

// Runtime is one running star process.
type Runtime struct {
	Config  config.Config
	Star    *star.Star
	Keypair *security.Keypair
	Health  *health.Checker
	API     *api.Server

	registry *sqlstore.DB
	listener net.Listener
	logger   *log.Logger
}

// New opens the registry, loads or creates this star's identity keypair,
// and wires the star particle driver, ready to Serve.
func New(cfg config.Config, version string, logger *log.Logger) (*Runtime, error) {
	if logger == nil {
		logger = log.Default()
	}

	reg, err := sqlstore.Open(cfg.Registry.Dir)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	kp, err := security.LoadOrCreateKeypair(config.StarHome())
	if err != nil {
		_ = reg.Close()
		return nil, fmt.Errorf("load keypair: %w", err)
	}

	self := cfg.Star.Key()
	s := star.New(self, point.StarSub(cfg.Star.Sub), reg, logger)

	// No peer identity is known ahead of a handshake, so the hyperlane
	// health probe starts with nothing to expect and trivially passes
	// until this star actually links up with others.
	checker := health.NewChecker(reg, s.Router, nil)

	return &Runtime{
		Config:  cfg,
		Star:    s,
		Keypair: kp,
		Health:  checker,
		API: &api.Server{
			Self:       self,
			Version:    version,
			Health:     checker,
			Prometheus: cfg.Telemetry.Prometheus,
		},
		registry: reg,
		logger:   logger,
	}, nil
}

// Serve starts the hyperlane listener, dials every configured peer, and
// runs the health checker and HTTP observability server until ctx is
// canceled.
func (rt *Runtime) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", rt.Config.Network.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", rt.Config.Network.Listen, err)
	}
	rt.listener = ln

	go rt.acceptLoop()
	for _, addr := range rt.Config.Network.Peers {
		go rt.dialPeer(addr)
	}
	go rt.Health.Run(ctx)

	var httpServer *http.Server
	if rt.Config.Telemetry.Enabled {
		httpServer = &http.Server{
			Addr:         rt.Config.Telemetry.HTTPAddr,
			Handler:      rt.API.Handler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				rt.logger.Printf("[runner] http server error: %v", err)
			}
		}()
		rt.logger.Printf("[runner] %s observability on http://%s", rt.Star.Self, rt.Config.Telemetry.HTTPAddr)
	}

	rt.logger.Printf("[runner] %s listening on %s", rt.Star.Self, rt.Config.Network.Listen)
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}
	_ = ln.Close()
	_ = rt.registry.Close()
	return nil
}

func (rt *Runtime) acceptLoop() {
	for {
		conn, err := rt.listener.Accept()
		if err != nil {
			return
		}
		go rt.handleLink(conn)
	}
}

func (rt *Runtime) dialPeer(addr string) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		rt.logger.Printf("[runner] dial %s failed: %v", addr, err)
		return
	}
	rt.handleLink(conn)
}

// handleLink performs the identity handshake over conn and, once
// established, hands the link to the star's Serve loop — blocking until
// the link closes, so dialPeer's goroutine doubles as that link's
// lifetime owner.
func (rt *Runtime) handleLink(conn net.Conn) {
	hconn, err := rt.Keypair.Handshake(conn, rt.Star.Self)
	if err != nil {
		rt.logger.Printf("[runner] handshake with %s failed: %v", conn.RemoteAddr(), err)
		_ = conn.Close()
		return
	}
	if err := rt.Star.Serve(hconn); err != nil {
		rt.logger.Printf("[runner] link %s closed: %v", hconn.PeerStarKey, err)
	}
}
