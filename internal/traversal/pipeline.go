package traversal

import (
	"time"

	"github.com/starlane-io/starlane/internal/metrics"
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/wave"
)

// Router is the capability the pipeline uses to ship a wave off this
// star once it has cleared Gravity on its outbound leg — the same
// contract transmit.Router declares, restated here to avoid an import
// cycle between traversal and transmit.
type Router interface {
	Route(w wave.Wave) error
}

// Pipeline is one star's layer chain: an ordered set of LayerFuncs per
// Layer, a Dispatcher invoked once a directed wave clears Core, and a
// Router used to ship the resulting reflection back out.
type Pipeline struct {
	layers map[point.Layer][]LayerFunc

	Dispatcher Dispatcher
	Router     Router

	// Self is this star's own Core surface, stamped as `from` on any
	// reflection the pipeline synthesizes.
	Self point.Surface
}

// NewPipeline builds an empty pipeline for the given star surface.
func NewPipeline(self point.Surface, dispatcher Dispatcher, router Router) *Pipeline {
	return &Pipeline{
		layers:     make(map[point.Layer][]LayerFunc),
		Dispatcher: dispatcher,
		Router:     router,
		Self:       self,
	}
}

// Use registers a LayerFunc to run at the given layer, in registration
// order relative to other funcs at that layer.
func (p *Pipeline) Use(layer point.Layer, fn LayerFunc) {
	p.layers[layer] = append(p.layers[layer], fn)
}

// Inject starts a directed wave's inbound traversal. fromGravity is true
// for a wave arriving from another star (injected at Gravity per
// spec.md's "incoming from another star ⇒ inject at Gravity"); false for
// a locally-originated wave, which is injected at its own `from` layer.
func (p *Pipeline) Inject(w wave.Wave, fromGravity bool) error {
	start := point.Gravity
	if !fromGravity {
		start = w.From.Layer
	}
	return p.inbound(w, start)
}

// inbound walks w from `layer` through Core, dispatching at Core and
// kicking off the return journey for any Reflected CoreBounce.
func (p *Pipeline) inbound(w wave.Wave, layer point.Layer) error {
	for {
		for _, fn := range p.layers[layer] {
			outcome := fn(w)
			switch outcome.Kind {
			case OutcomeAbsorb:
				return nil
			case OutcomeRedirect:
				w.To = wave.ToSingle(outcome.Redirect)
				return p.Router.Route(w)
			default:
				w = outcome.Wave
			}
		}

		if layer == point.Core {
			return p.dispatch(w)
		}
		next, ok := layer.Next()
		if !ok {
			return nil
		}
		layer = next
	}
}

// dispatch invokes the Core-layer handler and, on a Reflected bounce,
// starts the return journey at the original wave's originator layer.
func (p *Pipeline) dispatch(w wave.Wave) error {
	if !w.ID.Kind.Directed() {
		// A reflected wave that reaches Core dispatch has nowhere
		// further to go; absorbing here matches the "closes the
		// exchange slot" end of its journey (the exchanger, not the
		// pipeline, is responsible for delivering it to its caller).
		return nil
	}

	methodKind := string(w.Core.Method.Kind)
	start := time.Now()
	bounce := p.Dispatcher.Handle(w)
	metrics.WaveDispatchLatency.WithLabelValues(methodKind).Observe(time.Since(start).Seconds())
	metrics.WavesDispatched.WithLabelValues(methodKind).Inc()

	switch bounce.Kind {
	case Absorbed:
		return nil
	case Reflected:
		reflected := w.Reflect(p.Self, bounce.Core)
		return p.outbound(reflected, w.From.Layer)
	default:
		return nil
	}
}

// outbound walks a reflected wave from `layer` back out to Gravity,
// running the same per-layer funcs as the inbound leg, then hands the
// wave to Router for delivery (local, if the destination is on this
// star, or across a hyperlane otherwise).
func (p *Pipeline) outbound(w wave.Wave, layer point.Layer) error {
	for {
		for _, fn := range p.layers[layer] {
			outcome := fn(w)
			switch outcome.Kind {
			case OutcomeAbsorb:
				return nil
			case OutcomeRedirect:
				w.To = wave.ToSingle(outcome.Redirect)
				return p.Router.Route(w)
			default:
				w = outcome.Wave
			}
		}

		if layer == point.Gravity {
			return p.Router.Route(w)
		}
		prev, ok := layer.Prev()
		if !ok {
			return p.Router.Route(w)
		}
		layer = prev
	}
}
