package transmit

import (
	"context"

	"github.com/starlane-io/starlane/internal/exchange"
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/spaceerr"
	"github.com/starlane-io/starlane/internal/wave"
)

// Router is the capability a Transmitter routes a built wave through. A
// star composes routers in layers (LayerInjectionRouter for local
// traversal, the hyperlane router for inter-star delivery); the
// transmitter itself is router-agnostic.
type Router interface {
	Route(w wave.Wave) error
}

// Transmitter is the public send-side API a particle uses to exchange
// waves. It fills defaultable proto-wave fields per Fills, opens a
// reflection slot via Exchanger for directed waves that expect one, and
// hands the built wave to Router.
type Transmitter struct {
	Fills     Fills
	Defaults  Defaults
	Router    Router
	Exchanger *exchange.Exchanger
}

// New builds a Transmitter with DefaultFills.
func New(defaults Defaults, router Router, exchanger *exchange.Exchanger) *Transmitter {
	return &Transmitter{
		Fills:     DefaultFills(),
		Defaults:  defaults,
		Router:    router,
		Exchanger: exchanger,
	}
}

// fill applies t.Fills to proto and builds the final directed wave.
func (t *Transmitter) fill(proto Proto) (wave.Wave, error) {
	from, err := fillSurface(t.Fills.From, proto.From, t.Defaults.From)
	if err != nil {
		return wave.Wave{}, err
	}
	agent, err := fillAgent(t.Fills.Agent, proto.Agent, t.Defaults.Agent)
	if err != nil {
		return wave.Wave{}, err
	}
	handling, err := fillHandling(t.Fills.Handling, proto.Handling, t.Defaults.Handling)
	if err != nil {
		return wave.Wave{}, err
	}
	via, err := fillVia(t.Fills.Via, proto.Via, t.Defaults.Via)
	if err != nil {
		return wave.Wave{}, err
	}

	if proto.Method.Kind == "" {
		return wave.Wave{}, errRequired("method")
	}
	if proto.To.Kind == wave.RecipientsSingle && len(proto.To.Single.Point.Segments) == 0 {
		return wave.Wave{}, errRequired("to")
	}

	bounce, err := t.resolveBounce(proto)
	if err != nil {
		return wave.Wave{}, err
	}

	core := wave.DirectedCore{
		Method:  proto.Method,
		URI:     proto.URI,
		Headers: proto.Headers,
		Body:    proto.Body,
	}

	w := wave.NewDirected(proto.Kind, from, proto.To, core)
	w.Agent = agent
	w.Handling = handling
	w.Via = via
	w.Bounce = bounce
	w.History = proto.History
	scope, err := fillString(t.Fills.Scope, proto.Scope, t.Defaults.Scope)
	if err != nil {
		return wave.Wave{}, err
	}
	w.Scope = scope

	return w, nil
}

func (t *Transmitter) resolveBounce(proto Proto) (wave.BounceBacks, error) {
	if proto.Bounce != nil {
		return *proto.Bounce, nil
	}
	if b, ok := wave.BounceBacksFor(proto.Kind); ok {
		return b, nil
	}
	return wave.BounceBacks{}, errRequired("bounce_backs (no universal default for this wave kind)")
}

// Direct submits proto, awaits its reflection aggregate, and converts it
// to the caller's result type W via convert. This is the generic
// `direct<D,W>(proto) -> Result<W>` operation from spec.md §4.2.
func Direct[W any](ctx context.Context, t *Transmitter, proto Proto, convert func(exchange.Aggregate) (W, error)) (W, error) {
	var zero W
	w, err := t.fill(proto)
	if err != nil {
		return zero, err
	}

	out, cancel := t.Exchanger.Open(w)
	if err := t.Router.Route(w); err != nil {
		cancel()
		return zero, err
	}

	select {
	case agg := <-out:
		return convert(agg)
	case <-ctx.Done():
		cancel()
		return zero, ctx.Err()
	}
}

// singleReflected converts a 1-reflection Aggregate to its sole wave,
// surfacing non-2xx reflected cores as a *spaceerr.SpaceErr.
func singleReflected(agg exchange.Aggregate) (wave.Wave, error) {
	w, ok := agg.First()
	if !ok {
		return wave.Wave{}, spaceerr.Internal("no reflection in aggregate")
	}
	if !w.ReflectedCore.OK() {
		text, _ := w.ReflectedCore.Body.AsText()
		return w, spaceerr.Status(w.ReflectedCore.Status, text)
	}
	return w, nil
}

// Ping sends a directed Ping and awaits its Pong.
func Ping(ctx context.Context, t *Transmitter, proto Proto) (wave.Wave, error) {
	proto.Kind = wave.KindPing
	return Direct(ctx, t, proto, singleReflected)
}

// Ripple sends a directed Ripple and awaits its bounce-backs-bounded set
// of Echoes.
func Ripple(ctx context.Context, t *Transmitter, proto Proto) (exchange.Aggregate, error) {
	proto.Kind = wave.KindRipple
	return Direct(ctx, t, proto, func(agg exchange.Aggregate) (exchange.Aggregate, error) { return agg, nil })
}

// Signal sends a directed Signal, which is always absorbed and never
// reflected.
func Signal(t *Transmitter, proto Proto) error {
	proto.Kind = wave.KindSignal
	none := wave.NoBounce()
	proto.Bounce = &none
	w, err := t.fill(proto)
	if err != nil {
		return err
	}
	return t.Router.Route(w)
}

// Reflect sends a reflected wave answering original, addressed to
// original.ReflectTo(). Unlike directed sends, reflections never open an
// exchanger slot — they close one.
func (t *Transmitter) Reflect(original wave.Wave, core wave.ReflectedCore) error {
	r := original.Reflect(t.Defaults.From, core)
	return t.Router.Route(r)
}

// Bounce pings to's liveness with Cmd<Bounce> and reports whether it
// answered with a 2xx reflected core.
func Bounce(ctx context.Context, t *Transmitter, to point.Surface) (bool, error) {
	pong, err := Ping(ctx, t, BounceProto(to))
	if err != nil {
		return false, err
	}
	return pong.ReflectedCore.OK(), nil
}
