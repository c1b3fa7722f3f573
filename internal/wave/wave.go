package wave

import "github.com/starlane-io/starlane/internal/point"

// Wave is the envelope every particle exchange travels in. Exactly one of
// DirectedCore (Kind.Directed()) or (ReflectedCore, ReflectionOf) is
// meaningful, selected by Kind.
type Wave struct {
	ID ID `json:"id"`

	From point.Surface  `json:"from"`
	To   Recipients     `json:"to"`
	Via  *point.Surface `json:"via,omitempty"` // reflect_to() waypoint override, if any

	Agent    Agent    `json:"agent"`
	Handling Handling `json:"handling"`
	Scope    string   `json:"scope,omitempty"`
	Session  string   `json:"session,omitempty"`

	Hops  int  `json:"hops"`
	Track bool `json:"track,omitempty"`

	// History is the set of star points already visited by a gossiping
	// Ripple or a multi-hop Transport/Hop relay; a forwarder must refuse
	// to re-forward a wave that already carries its own point.
	History map[string]struct{} `json:"history,omitempty"`

	Bounce BounceBacks `json:"bounce"` // directed waves only

	// Directed payload (Kind.Directed() == true).
	Core DirectedCore `json:"core,omitempty"`

	// Reflected payload (Kind.Directed() == false).
	ReflectionOf  ID            `json:"reflection_of,omitempty"`
	Intended      Recipients    `json:"intended,omitempty"`
	ReflectedCore ReflectedCore `json:"reflected_core,omitempty"`
}

// NewDirected builds a fresh directed wave of the given kind from a
// DirectedCore, with default handling and no bounce policy set (callers
// fill Bounce via BounceBacksFor or explicitly).
func NewDirected(kind Kind, from point.Surface, to Recipients, core DirectedCore) Wave {
	return Wave{
		ID:       NewID(kind),
		From:     from,
		To:       to,
		Agent:    Anonymous(),
		Handling: DefaultHandling(),
		Core:     core,
	}
}

// ReflectTo returns the surface a reflection of this wave must be sent to:
// via if set, otherwise from. Per spec.md §4.1: `reflect_to() =
// via.unwrap_or(from)`.
func (w Wave) ReflectTo() point.Surface {
	if w.Via != nil {
		return *w.Via
	}
	return w.From
}

// Reflect builds the reflected wave answering w, sent from the responding
// surface and addressed back to w.ReflectTo(). Panics if w.ID.Kind has no
// reflection (Signal); callers must check Kind.Directed() and
// ReflectionKind() first.
func (w Wave) Reflect(from point.Surface, core ReflectedCore) Wave {
	rk, ok := w.ID.Kind.ReflectionKind()
	if !ok {
		panic("wave: " + string(w.ID.Kind) + " has no reflection")
	}
	return Wave{
		ID:            NewID(rk),
		From:          from,
		To:            ToSingle(w.ReflectTo()),
		Agent:         HyperUser(),
		Handling:      w.Handling,
		Scope:         w.Scope,
		Session:       w.Session,
		ReflectionOf:  w.ID,
		Intended:      w.To,
		ReflectedCore: core,
	}
}

// Timeout synthesizes the reflection the exchanger installs when a
// directed wave's wait timer expires: status 408, empty body, intended
// set to the original recipients.
func (w Wave) Timeout() Wave {
	rk, ok := w.ID.Kind.ReflectionKind()
	if !ok {
		rk = KindEcho
	}
	return Wave{
		ID:            NewID(rk),
		From:          w.ReflectTo(),
		To:            ToSingle(w.From),
		Agent:         HyperUser(),
		ReflectionOf:  w.ID,
		Intended:      w.To,
		ReflectedCore: NewReflectedCore(408, Empty()),
	}
}

// VisitedHistory reports whether star s is already recorded in a ripple's
// history.
func (w Wave) VisitedHistory(s string) bool {
	if w.History == nil {
		return false
	}
	_, ok := w.History[s]
	return ok
}

// WithHistoryVisit returns a copy of w with s added to its ripple history.
func (w Wave) WithHistoryVisit(s string) Wave {
	h := make(map[string]struct{}, len(w.History)+1)
	for k := range w.History {
		h[k] = struct{}{}
	}
	h[s] = struct{}{}
	w.History = h
	return w
}

// IncrementHops returns a copy of w with its hop counter incremented by
// exactly one, as done once per hyperlane traversal by the receiving star.
func (w Wave) IncrementHops() Wave {
	w.Hops++
	return w
}

// MaxHops is the loop-prevention ceiling on hop count (spec.md §5).
const MaxHops = 32

// ExceedsMaxHops reports whether w has traveled past the loop-prevention
// ceiling.
func (w Wave) ExceedsMaxHops() bool {
	return w.Hops > MaxHops
}
