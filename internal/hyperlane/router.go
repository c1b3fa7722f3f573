package hyperlane

import (
	"fmt"
	"sync"

	"github.com/starlane-io/starlane/internal/metrics"
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/spaceerr"
	"github.com/starlane-io/starlane/internal/wave"
)

// Router implements transmit.Router over a star's live hyperlane
// connections: routing a wave means picking the adjacent star(s) its `to`
// surface(s) are addressed via (point.RouteStar). When the destination is
// a direct peer, the wave is sent as-is; otherwise Router wraps it in a
// Transport signal (spec.md §4.4, "wraps the wave in a Transport signal
// addressed to the destination star and forwards it via adjacent
// hyperlanes") and floods a Hop-wrapped copy to every adjacent this wave
// hasn't already visited, relying on the receiving star's own Router to
// keep relaying until the Transport reaches its destination. Broadcast
// recipient kinds (Stars, Watchers) must already be expanded into
// concrete Multi surfaces by the caller (the wrangle/search layer owns
// that expansion) before reaching Router.
type Router struct {
	mu    sync.RWMutex
	peers map[string]*Conn // keyed by StarKey.String()

	selfKey     point.StarKey
	selfSurface point.Surface
}

// NewRouter builds an empty hyperlane router for the given star, used to
// address Transport signals wrapping waves this star forwards on behalf
// of a non-adjacent destination.
func NewRouter(self point.StarKey) *Router {
	return &Router{
		peers:       make(map[string]*Conn),
		selfKey:     self,
		selfSurface: point.AtCore(self.StarPoint()),
	}
}

// AddPeer registers a live connection to an adjacent star, replacing any
// prior connection to the same star.
func (r *Router) AddPeer(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[conn.PeerStarKey.String()] = conn
}

// RemovePeer drops a connection, e.g. on hyperlane close.
func (r *Router) RemovePeer(key point.StarKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, key.String())
}

// Peer returns the live connection to the given star, if any.
func (r *Router) Peer(key point.StarKey) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.peers[key.String()]
	return c, ok
}

// Adjacents returns the StarKeys of every star this router currently has
// a live hyperlane to.
func (r *Router) Adjacents() []point.StarKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]point.StarKey, 0, len(r.peers))
	for _, c := range r.peers {
		keys = append(keys, c.PeerStarKey)
	}
	return keys
}

// Route increments w's hop counter (once per hyperlane traversal, per
// spec.md §5) and forwards it to the adjacent star(s) named in its `to`.
// A wave whose hop count exceeds MaxHops is dropped and a status error is
// returned so the caller can synthesize the loop-prevention reflection
// described in spec.md §5 ("dropped and, if directed, an error pong is
// synthesized to the original from").
//
// A target that is a direct peer is sent the wave as-is — this is also
// how a Transport signal makes its literal final hop, landing on its
// destination star's Hyp<Transport> handler unwrapped. A target with no
// direct connection is reached via forward, which wraps (or re-wraps) the
// wave in Transport/Hop and relays it through adjacents per spec.md §4.4.
func (r *Router) Route(w wave.Wave) error {
	w = w.IncrementHops()
	if w.ExceedsMaxHops() {
		metrics.HopsDropped.Inc()
		return spaceerr.Status(500, "hyperlane: max hops exceeded, wave dropped")
	}
	metrics.HopsTotal.Inc()

	targets := nextHops(w.To)
	if len(targets) == 0 {
		return spaceerr.BadRequest("hyperlane: wave has no star-routed recipient to forward to")
	}

	var firstErr error
	sent := 0
	for _, key := range targets {
		if conn, ok := r.Peer(key); ok {
			if err := conn.Send(StarMessageFrame(w)); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			sent++
			continue
		}

		if err := r.forward(w, key); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sent++
	}
	if sent == 0 {
		return firstErr
	}
	return nil
}

// forward delivers w to target, a star this router has no direct
// hyperlane to. It wraps w in a Transport signal addressed to target
// (unless w is already one, as when relaying a Transport this star
// unwrapped from an arriving Hop but isn't the final destination for),
// then floods a Hop-wrapped copy of that transport to every adjacent not
// already recorded in its history, per spec.md §4.4. Each adjacent's own
// Router repeats this process, so the transport reaches target along
// whichever path has an unvisited adjacent at every star it passes
// through. No routing table exists to pick a single best path, so a
// cyclic topology can deliver the same transport more than once; callers
// already tolerate this (late or duplicate reflections are discarded by
// the exchanger).
func (r *Router) forward(w wave.Wave, target point.StarKey) error {
	targetSurface := point.AtCore(target.StarPoint())
	transport := w
	if !transport.Core.Method.IsHyp(wave.HypTransport) {
		transport = WrapInTransport(w, r.selfSurface, targetSurface)
	}
	transport = transport.WithHistoryVisit(r.selfKey.String())

	var firstErr error
	sent := 0
	for _, adj := range r.Adjacents() {
		if transport.VisitedHistory(adj.String()) {
			continue
		}
		conn, ok := r.Peer(adj)
		if !ok {
			continue
		}
		hop := WrapInHop(transport, r.selfSurface, point.AtCore(adj.StarPoint()))
		if err := conn.Send(StarMessageFrame(hop)); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sent++
	}
	if sent == 0 {
		if firstErr != nil {
			return firstErr
		}
		return spaceerr.Unavailable(fmt.Sprintf("hyperlane: no unvisited adjacent toward star %s", target))
	}
	return nil
}

// nextHops extracts the star keys a Recipients value names via
// point.RouteStar addressing.
func nextHops(to wave.Recipients) []point.StarKey {
	switch to.Kind {
	case wave.RecipientsSingle:
		if to.Single.Point.Route.Kind == point.RouteStar {
			return []point.StarKey{*to.Single.Point.Route.Star}
		}
		return nil
	case wave.RecipientsMulti:
		var keys []point.StarKey
		for _, s := range to.Multi {
			if s.Point.Route.Kind == point.RouteStar {
				keys = append(keys, *s.Point.Route.Star)
			}
		}
		return keys
	default:
		return nil
	}
}
