package star

import (
	"context"
	"time"

	"github.com/starlane-io/starlane/internal/handler"
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/registry"
	"github.com/starlane-io/starlane/internal/spaceerr"
	"github.com/starlane-io/starlane/internal/transmit"
	"github.com/starlane-io/starlane/internal/traversal"
	"github.com/starlane-io/starlane/internal/wave"
)

// provisionTimeout bounds how long Provision waits for a peer star's
// Hyp<Assign> Pong before giving up.
const provisionTimeout = 30 * time.Second

// handleProvision answers Hyp<Provision>{point, state} over the wire.
func (s *Star) handleProvision(ctx handler.InCtx) traversal.CoreBounce {
	req, ok := DecodeProvisionRequest(ctx.Body())
	if !ok {
		return traversal.ReflectedBounce(wave.ErrCore(spaceerr.StatusBadRequest, "malformed provision request"))
	}
	loc, err := s.Provision(ctx.Transmitter, req.Point, req.State)
	if err != nil {
		return traversal.ReflectedBounce(wave.ErrCore(spaceerr.StatusCode(err), err.Error()))
	}
	return traversal.ReflectedBounce(wave.OKCore(EncodeLocation(loc)))
}

// Provision resolves where a registered particle should live, per spec.md
// §4.7's Hyp<Provision> steps:
//  1. read the particle's registry record;
//  2. if a wrangle entry exists for its kind, round-robin select a peer
//     star, ask it to Hyp<Assign> the particle, and report that peer as
//     the location;
//  3. else, if this star has a local driver for the kind, assign it here;
//  4. else, fail with "could not find host to provision".
func (s *Star) Provision(tx *transmit.Transmitter, p point.Point, state wave.Substance) (registry.Location, error) {
	rec, err := s.Registry.Record(p)
	if err != nil {
		return registry.Location{}, err
	}

	if peer, ok := s.Wrangle.Wrangle(point.SelectorFor(rec.Stub.Kind)); ok {
		return s.provisionToPeer(tx, peer, p, rec.Stub.Kind, state)
	}

	if _, ok := s.driverFor(rec.Stub.Kind); ok {
		if err := s.Assign(context.Background(), AssignDetails{Point: p, Kind: rec.Stub.Kind}, state); err != nil {
			return registry.Location{}, err
		}
		selfPoint := s.Self.StarPoint()
		return registry.Location{Star: &selfPoint}, nil
	}

	return registry.Location{}, spaceerr.Statusf(spaceerr.StatusNotFound, "star: could not find host to provision kind %s", rec.Stub.Kind)
}

func (s *Star) provisionToPeer(tx *transmit.Transmitter, peer point.StarKey, p point.Point, kind point.Kind, state wave.Substance) (registry.Location, error) {
	proto := transmit.Proto{
		To:     wave.ToSingle(point.AtCore(peer.StarPoint())),
		Method: wave.Hyp(wave.HypAssign),
		Body:   EncodeAssignRequest(AssignRequest{Details: AssignDetails{Point: p, Kind: kind}, State: state}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), provisionTimeout)
	defer cancel()

	if _, err := transmit.Ping(ctx, tx, proto); err != nil {
		s.Wrangle.RecordFailure(peer)
		return registry.Location{}, err
	}
	s.Wrangle.RecordSuccess(peer)

	peerPoint := peer.StarPoint()
	return registry.Location{Star: &peerPoint}, nil
}
