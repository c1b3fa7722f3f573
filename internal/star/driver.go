package star

import (
	"context"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/wave"
)

// Driver is a locally-registered particle-kind handler: the capability
// Hyp<Assign> calls into once the Star has allocated a state shell for the
// point, per spec.md §4.7 step 3 ("send a new Hyp<Assign> to the driver's
// surface; await its Pong; propagate any error").
//
// Concrete drivers (file store, web, control, ...) are out of scope per
// spec.md §1; Star only needs the contract to dispatch into whichever are
// registered for this deployment.
type Driver interface {
	Kind() point.Kind
	Assign(ctx context.Context, p point.Point, state wave.Substance) error
}
