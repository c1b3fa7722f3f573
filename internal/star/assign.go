package star

import (
	"context"

	"github.com/starlane-io/starlane/internal/handler"
	"github.com/starlane-io/starlane/internal/spaceerr"
	"github.com/starlane-io/starlane/internal/traversal"
	"github.com/starlane-io/starlane/internal/wave"
)

// handleAssign answers Hyp<Assign>{details, state} over the wire.
func (s *Star) handleAssign(ctx handler.InCtx) traversal.CoreBounce {
	req, ok := DecodeAssignRequest(ctx.Body())
	if !ok {
		return traversal.ReflectedBounce(wave.ErrCore(spaceerr.StatusBadRequest, "malformed assign request"))
	}
	if err := s.Assign(context.Background(), req.Details, req.State); err != nil {
		return traversal.ReflectedBounce(wave.ErrCore(spaceerr.StatusCode(err), err.Error()))
	}
	return traversal.ReflectedBounce(wave.OKCore(wave.Empty()))
}

// Assign is the idempotent create-state-shell-plus-driver-assignment
// operation of spec.md §4.7's Hyp<Assign>:
//  1. fail if no driver is registered locally for details.Kind;
//  2. allocate a particle state shell keyed by details.Point;
//  3. call the driver's own Assign, propagating any error;
//  4. record this star as the point's location in the registry.
func (s *Star) Assign(ctx context.Context, details AssignDetails, state wave.Substance) error {
	driver, ok := s.driverFor(details.Kind)
	if !ok {
		return spaceerr.Statusf(spaceerr.StatusInternal, "star: no driver registered for kind %s", details.Kind)
	}

	s.allocateShell(details.Point)

	if err := driver.Assign(ctx, details.Point, state); err != nil {
		return err
	}

	return s.Registry.AssignStar(details.Point, s.Self.StarPoint())
}
