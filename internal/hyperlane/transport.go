package hyperlane

import (
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/spaceerr"
	"github.com/starlane-io/starlane/internal/wave"
)

// WrapInTransport wraps a directed wave W for end-to-end delivery from
// star `from` to star `to`, producing a Signal whose method is
// Hyp<Transport> and whose body is Substance::UltraWave(W). Per spec.md
// §5: "A's transmitter calls W.wrap_in_transport(from, to)."
func WrapInTransport(w wave.Wave, from, to point.Surface) wave.Wave {
	signal := wave.NewDirected(wave.KindSignal, from, wave.ToSingle(to), wave.DirectedCore{
		Method: wave.Hyp(wave.HypTransport),
		Body:   wave.UltraWaveSubstance(w),
	})
	signal.Bounce = wave.NoBounce()
	signal.Agent = wave.HyperUser()
	signal.Hops = w.Hops
	signal.History = w.History
	return signal
}

// UnwrapFromTransport retrieves the original wave from a Hyp<Transport>
// signal, succeeding only when the transport's `to` matches selfStar (the
// receiving star is the transport's final destination).
func UnwrapFromTransport(transport wave.Wave, selfStar point.Surface) (wave.Wave, error) {
	if !transport.Core.Method.IsHyp(wave.HypTransport) {
		return wave.Wave{}, spaceerr.BadRequest("not a Hyp<Transport> signal")
	}
	if !transport.To.Matches(selfStar) {
		return wave.Wave{}, spaceerr.BadRequest("transport not addressed to this star")
	}
	inner, ok := transport.Core.Body.AsUltraWave()
	if !ok {
		return wave.Wave{}, spaceerr.ExpectedSubstance(string(wave.SubstanceUltra), string(transport.Core.Body.Kind))
	}
	return inner, nil
}

// WrapInHop wraps a transport signal for the next single hyperlane
// traversal (A→B, not A→D), producing a Hyp<Hop> signal carrying the
// transport signal as its body. Per spec.md §5: "the hop sender calls
// wrap_in_hop(from,to) on the transport-signal."
func WrapInHop(transport wave.Wave, from, to point.Surface) wave.Wave {
	hop := wave.NewDirected(wave.KindSignal, from, wave.ToSingle(to), wave.DirectedCore{
		Method: wave.Hyp(wave.HypHop),
		Body:   wave.UltraWaveSubstance(transport),
	})
	hop.Bounce = wave.NoBounce()
	hop.Agent = wave.HyperUser()
	hop.Hops = transport.Hops
	hop.History = transport.History
	return hop
}

// UnwrapFromHop retrieves the carried transport signal from a Hyp<Hop>
// signal.
func UnwrapFromHop(hop wave.Wave) (wave.Wave, error) {
	if !hop.Core.Method.IsHyp(wave.HypHop) {
		return wave.Wave{}, spaceerr.BadRequest("not a Hyp<Hop> signal")
	}
	transport, ok := hop.Core.Body.AsUltraWave()
	if !ok {
		return wave.Wave{}, spaceerr.ExpectedSubstance(string(wave.SubstanceUltra), string(hop.Core.Body.Kind))
	}
	return transport, nil
}
