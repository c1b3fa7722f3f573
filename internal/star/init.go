package star

import (
	"github.com/starlane-io/starlane/internal/handler"
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/registry"
	"github.com/starlane-io/starlane/internal/spaceerr"
	"github.com/starlane-io/starlane/internal/traversal"
	"github.com/starlane-io/starlane/internal/wave"
)

// handleInit answers Hyp<Init>, per spec.md §4.7: on the Central sub-star
// only, it creates and assigns the well-known Root and Global particles;
// every other sub-star simply reports Ready.
func (s *Star) handleInit(ctx handler.InCtx) traversal.CoreBounce {
	if s.Sub != point.StarCentral {
		return traversal.ReflectedBounce(wave.OKCore(wave.TextSubstance(registry.Ready.String())))
	}

	if err := s.ensureRootAndGlobal(); err != nil {
		return traversal.ReflectedBounce(wave.ErrCore(spaceerr.StatusCode(err), err.Error()))
	}
	return traversal.ReflectedBounce(wave.OKCore(wave.TextSubstance(registry.Ready.String())))
}

// ensureRootAndGlobal registers the Root and Global particles (idempotent
// via registry.Ensure, so a restarted Central doesn't fail Hyp<Init>
// against its own prior registration), assigns both to this star, and
// marks them Ready.
func (s *Star) ensureRootAndGlobal() error {
	for _, seed := range []struct {
		point point.Point
		kind  point.Kind
	}{
		{point: point.Root(), kind: point.Kind{Discriminant: point.KindRoot}},
		{point: point.GlobalExecutor(), kind: point.Kind{Discriminant: point.KindGlobal}},
	} {
		if err := s.Registry.Register(registry.Registration{
			Point:    seed.point,
			Kind:     seed.kind,
			Owner:    registry.HyperUser,
			Strategy: registry.Ensure,
		}); err != nil {
			return err
		}
		if err := s.Registry.AssignStar(seed.point, s.Self.StarPoint()); err != nil {
			return err
		}
		if err := s.Registry.SetStatus(seed.point, registry.Ready); err != nil {
			return err
		}
	}
	return nil
}
