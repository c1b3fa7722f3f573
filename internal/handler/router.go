package handler

import (
	"log"

	"github.com/starlane-io/starlane/internal/spaceerr"
	"github.com/starlane-io/starlane/internal/traversal"
	"github.com/starlane-io/starlane/internal/transmit"
	"github.com/starlane-io/starlane/internal/wave"
)

// HandlerFunc is a route's body: invoked with the matched InCtx, it
// returns the CoreBounce the traversal pipeline should reflect (or
// Absorbed for Signals and any method a handler chooses not to answer).
type HandlerFunc func(ctx InCtx) traversal.CoreBounce

// route pairs a Selector with the HandlerFunc it guards.
type route struct {
	selector Selector
	fn       HandlerFunc
}

// Router is a driver's tagged route table (spec.md §4.6, §8.5's "Dynamic
// dispatch → tagged enums": `[(RouteSelector, HandlerFn)]` built at
// driver init). It implements traversal.Dispatcher.
type Router struct {
	routes      []route
	transmitter *transmit.Transmitter
	logger      *log.Logger
}

// NewRouter builds an empty route table for one particle's driver.
func NewRouter(tx *transmit.Transmitter, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	return &Router{transmitter: tx, logger: logger}
}

// Route registers a handler under the given selector. Routes are tried in
// registration order; the first selector that Accepts the wave's core
// wins, per spec.md §4.6 step 2 ("selects the first matching route").
func (r *Router) Route(selector Selector, fn HandlerFunc) {
	r.routes = append(r.routes, route{selector: selector, fn: fn})
}

// Handle implements traversal.Dispatcher: it extracts (method, uri, body
// kind), selects the first matching route, and invokes it with a root
// InCtx. No match synthesizes a 404 (Absorbed for Signal-kind waves,
// which have no reflection to carry it).
func (r *Router) Handle(w wave.Wave) traversal.CoreBounce {
	for _, rt := range r.routes {
		if !rt.selector.Accepts(w.Core) {
			continue
		}
		ctx := NewInCtx(w, r.transmitter, r.logger)
		return rt.fn(ctx)
	}

	if w.ID.Kind == wave.KindSignal {
		return traversal.AbsorbedBounce()
	}
	return traversal.ReflectedBounce(wave.ErrCore(spaceerr.StatusNotFound, "no route for "+w.Core.Method.String()))
}
