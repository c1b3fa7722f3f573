package traversal

import "github.com/starlane-io/starlane/internal/wave"

// CoreBounceKind tags what a Core-layer handler did with a directed wave.
type CoreBounceKind int

const (
	// Absorbed means the handler consumed the wave with no reply (valid
	// for any directed kind, required for Signal).
	Absorbed CoreBounceKind = iota
	// Reflected carries the ReflectedCore the pipeline turns into a
	// Pong/Echo for the return journey.
	Reflected
)

// CoreBounce is the result of dispatching a directed wave to its Core
// handler, per spec.md §4.5: `DirectedHandler::handle(RootInCtx) →
// CoreBounce`.
type CoreBounce struct {
	Kind CoreBounceKind
	Core wave.ReflectedCore // meaningful when Kind == Reflected
}

// AbsorbedBounce builds an Absorbed CoreBounce.
func AbsorbedBounce() CoreBounce { return CoreBounce{Kind: Absorbed} }

// ReflectedBounce builds a Reflected CoreBounce.
func ReflectedBounce(core wave.ReflectedCore) CoreBounce {
	return CoreBounce{Kind: Reflected, Core: core}
}

// Dispatcher is the Core-layer handoff: invoked once a directed wave has
// traversed every intermediate layer and reached its destination
// particle. internal/handler implements this over its route table; the
// traversal package only needs the contract so it can build the return
// journey.
type Dispatcher interface {
	Handle(w wave.Wave) CoreBounce
}
