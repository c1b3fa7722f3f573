// Package star implements the Star particle driver (spec.md §4.7): the
// per-star handler for Hyp<Init>, Hyp<Assign>, Hyp<Provision>,
// Hyp<Transport>, and Hyp<Search>, wired on top of the registry, wrangle,
// hyperlane, and traversal packages the way the teacher's own Daemon wires
// its phases' services together — one struct holding every subsystem, a
// constructor that builds and cross-connects them, and a Serve loop that
// pumps frames off each adjacent hyperlane.
package star

import (
	"log"
	"sync"

	"github.com/starlane-io/starlane/internal/exchange"
	"github.com/starlane-io/starlane/internal/handler"
	"github.com/starlane-io/starlane/internal/hyperlane"
	"github.com/starlane-io/starlane/internal/metrics"
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/quota"
	"github.com/starlane-io/starlane/internal/registry"
	"github.com/starlane-io/starlane/internal/search"
	"github.com/starlane-io/starlane/internal/transmit"
	"github.com/starlane-io/starlane/internal/traversal"
	"github.com/starlane-io/starlane/internal/watch"
	"github.com/starlane-io/starlane/internal/wave"
	"github.com/starlane-io/starlane/internal/wrangle"
)

// Star is one running star: its identity, its registry connection, its
// wrangle table over peer stars, its hyperlane router, and the traversal
// pipeline that moves waves through Gravity→Field→Shell→Core to reach the
// handlers this package registers for the Star particle itself.
type Star struct {
	Self point.StarKey
	Sub  point.StarSub

	Registry registry.Registry
	Wrangle  *wrangle.Table
	Router   *hyperlane.Router

	Transmitter *transmit.Transmitter
	Handlers    *handler.Router
	Pipeline    *traversal.Pipeline
	Watch       *watch.Bus
	Search      *search.Handler
	Quota       *quota.Gate

	Logger *log.Logger

	self point.Surface

	mu      sync.Mutex
	drivers map[point.Discriminant]Driver
	shells  map[string]struct{}
}

// New builds a Star for self/sub, wiring the transmitter, handler router,
// traversal pipeline, wrangle table, and watch bus over a fresh hyperlane
// router, and registering this package's Hyp routes.
func New(self point.StarKey, sub point.StarSub, reg registry.Registry, logger *log.Logger) *Star {
	if logger == nil {
		logger = log.Default()
	}

	hlRouter := hyperlane.NewRouter(self)
	selfSurface := point.AtCore(self.StarPoint())

	tx := transmit.New(transmit.Defaults{From: selfSurface}, hlRouter, exchange.New())
	hr := handler.NewRouter(tx, logger)
	pipeline := traversal.NewPipeline(selfSurface, hr, hlRouter)
	table := wrangle.NewTable(self)

	s := &Star{
		Self:        self,
		Sub:         sub,
		Registry:    reg,
		Wrangle:     table,
		Router:      hlRouter,
		Transmitter: tx,
		Handlers:    hr,
		Pipeline:    pipeline,
		Quota:       quota.NewGate(quota.DefaultConfig()),
		Logger:      logger,
		self:        selfSurface,
		drivers:     make(map[point.Discriminant]Driver),
		shells:      make(map[string]struct{}),
	}
	s.Watch = watch.NewBus(self, s.authority, hlRouter)
	s.Search = &search.Handler{
		Self:     self,
		SelfSub:  sub,
		OwnKinds: s.ownKinds,
		Wrangler: &search.Wrangler{Self: self, Adjacency: hlRouter},
	}

	s.Pipeline.Use(point.Field, s.fieldQuota)
	s.routes()
	return s
}

// fieldQuota is the Field-layer back-pressure check: a directed wave
// that fails its originating surface's quota gate is shed with a 503
// reflection instead of being absorbed silently, per its handling
// priority. Reflected waves returning through Field pass through
// untouched — their quota was already charged on the way in.
func (s *Star) fieldQuota(w wave.Wave) traversal.Outcome {
	if !w.ID.Kind.Directed() {
		return traversal.Continue(w)
	}
	if s.Quota.Allow(w.From, w.Handling.Priority) {
		return traversal.Continue(w)
	}
	metrics.WavesShed.WithLabelValues(w.Handling.Priority.String()).Inc()

	if _, ok := w.ID.Kind.ReflectionKind(); !ok {
		// No reflection to send (e.g. Signal) — shed silently.
		return traversal.Absorb()
	}
	reflected := w.Reflect(s.self, wave.ErrCore(503, "back-pressure: shedding load"))
	if err := s.Pipeline.Router.Route(reflected); err != nil {
		s.Logger.Printf("quota: failed to route back-pressure reflection for %s: %v", w.ID, err)
	}
	return traversal.Absorb()
}

// routes registers this package's Hyp-namespace handlers on the star's
// route table, per spec.md §4.7's five hyper-methods.
func (s *Star) routes() {
	s.Handlers.Route(handler.HypSelector(wave.HypInit), s.handleInit)
	s.Handlers.Route(handler.HypSelector(wave.HypAssign), s.handleAssign)
	s.Handlers.Route(handler.HypSelector(wave.HypProvision), s.handleProvision)
	s.Handlers.Route(handler.HypSelector(wave.HypTransport), s.handleTransport)
	s.Handlers.Route(handler.HypSelector(wave.HypHop), s.handleHop)
	s.Search.Route(s.Handlers)
}

// RegisterDriver makes d available to Hyp<Assign>/Hyp<Provision> for its
// kind and advertises it as one of this star's own hosted kinds to
// Hyp<Search>'s Kinds/StarKind queries.
func (s *Star) RegisterDriver(d Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[d.Kind().Discriminant] = d
}

func (s *Star) driverFor(k point.Kind) (Driver, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[k.Discriminant]
	return d, ok
}

// ownKinds reports the kind selectors this star currently hosts via a
// locally-registered Driver — the "external kinds" Hyp<Search>'s Kinds
// query (and a matching StarKind query) contribute for this star.
func (s *Star) ownKinds() []point.Selector {
	s.mu.Lock()
	defer s.mu.Unlock()
	sels := make([]point.Selector, 0, len(s.drivers))
	for _, d := range s.drivers {
		sels = append(sels, point.SelectorFor(d.Kind()))
	}
	return sels
}

func (s *Star) allocateShell(p point.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shells[p.String()] = struct{}{}
}

// authority implements watch.AuthorityFunc: a Star-topic selector is
// authoritative at the star it names; a Point-topic selector is
// authoritative at whichever star the registry currently has that point
// assigned to (unknown or unassigned points are treated as self-
// authoritative, since there is nothing upstream to proxy to yet).
func (s *Star) authority(sel watch.WatchSelector) (point.StarKey, bool) {
	if sel.Topic.Kind == watch.TopicStar {
		return sel.Topic.Star, sel.Topic.Star.Equal(s.Self)
	}

	rec, err := s.Registry.Record(sel.Topic.Point)
	if err != nil || rec.Location.Star == nil {
		return s.Self, true
	}
	star, ok := starKeyOf(*rec.Location.Star)
	if !ok {
		return s.Self, true
	}
	return star, star.Equal(s.Self)
}

// starKeyOf recovers the StarKey a star's own point was built from
// (k.StarPoint(), which stamps Route = StarRoute(k)) without needing a
// point-text parser — the same encoding trick registry/sqlstore and
// package watch already lean on.
func starKeyOf(p point.Point) (point.StarKey, bool) {
	if p.Route.Kind == point.RouteStar && p.Route.Star != nil {
		return *p.Route.Star, true
	}
	return point.StarKey{}, false
}
