package star

import (
	"github.com/starlane-io/starlane/internal/handler"
	"github.com/starlane-io/starlane/internal/hyperlane"
	"github.com/starlane-io/starlane/internal/spaceerr"
	"github.com/starlane-io/starlane/internal/traversal"
	"github.com/starlane-io/starlane/internal/wave"
)

// handleTransport answers Hyp<Transport>{inner}, per spec.md §4.7: it
// unwraps the boxed inner wave and injects it at this star's Gravity
// layer, marked as arriving from another star. Transport waves are
// Signals — always absorbed, never reflected — so any injection failure
// is logged rather than surfaced to a caller with nothing to reflect to.
func (s *Star) handleTransport(ctx handler.InCtx) traversal.CoreBounce {
	inner, ok := ctx.Body().AsUltraWave()
	if !ok {
		s.Logger.Printf("[star] %s dropped malformed Hyp<Transport>: %v", s.Self, spaceerr.ExpectedSubstance(string(wave.SubstanceUltra), string(ctx.Body().Kind)))
		return traversal.AbsorbedBounce()
	}
	if err := s.Pipeline.Inject(inner, true); err != nil {
		s.Logger.Printf("[star] %s transport injection error: %v", s.Self, err)
	}
	return traversal.AbsorbedBounce()
}

// handleHop answers Hyp<Hop>{transport}, per spec.md §4.4: it unwraps the
// carried Transport signal and, if this star is its final destination,
// injects the transport wave at Gravity exactly as handleTransport does
// (so the boxed inner wave reaches this star's own Core dispatch); if
// not, it hands the transport back to Router to keep relaying it toward
// its destination. Hop waves are Signals — always absorbed, never
// reflected.
func (s *Star) handleHop(ctx handler.InCtx) traversal.CoreBounce {
	transport, err := hyperlane.UnwrapFromHop(ctx.Wave())
	if err != nil {
		s.Logger.Printf("[star] %s dropped malformed Hyp<Hop>: %v", s.Self, err)
		return traversal.AbsorbedBounce()
	}

	if transport.To.Matches(s.self) {
		inner, err := hyperlane.UnwrapFromTransport(transport, s.self)
		if err != nil {
			s.Logger.Printf("[star] %s dropped malformed Hyp<Transport> carried in Hop: %v", s.Self, err)
			return traversal.AbsorbedBounce()
		}
		if err := s.Pipeline.Inject(inner, true); err != nil {
			s.Logger.Printf("[star] %s hop injection error: %v", s.Self, err)
		}
		return traversal.AbsorbedBounce()
	}

	if err := s.Router.Route(transport); err != nil {
		s.Logger.Printf("[star] %s hop relay error: %v", s.Self, err)
	}
	return traversal.AbsorbedBounce()
}
