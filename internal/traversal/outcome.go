// Package traversal implements the multi-layer traversal pipeline
// (spec.md §4.5): the ordered walk a wave takes through a star's layers
// (Gravity→Field→Shell→Core on the way in, Core→Shell→Field→Gravity on a
// reflection's way back out), where each layer is a stateless function
// that may pass the wave on, absorb it, or redirect it to a different
// surface.
package traversal

import (
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/wave"
)

// OutcomeKind tags what a layer function decided to do with a wave.
type OutcomeKind int

const (
	// OutcomeContinue passes the (possibly modified) wave to the next
	// layer.
	OutcomeContinue OutcomeKind = iota
	// OutcomeAbsorb stops traversal silently; no further layers run and
	// no reflection is synthesized by the pipeline itself.
	OutcomeAbsorb
	// OutcomeRedirect stops ordinary traversal and hands the wave to the
	// router addressed at a different surface (e.g. a Field layer that
	// discovers the true destination is a different particle).
	OutcomeRedirect
)

// Outcome is what a LayerFunc returns.
type Outcome struct {
	Kind     OutcomeKind
	Wave     wave.Wave     // meaningful when Kind == OutcomeContinue
	Redirect point.Surface // meaningful when Kind == OutcomeRedirect
}

// Continue passes w on to the next layer, unmodified or modified.
func Continue(w wave.Wave) Outcome { return Outcome{Kind: OutcomeContinue, Wave: w} }

// Absorb stops traversal at this layer.
func Absorb() Outcome { return Outcome{Kind: OutcomeAbsorb} }

// Redirect stops ordinary traversal and reroutes to a different surface.
func Redirect(to point.Surface) Outcome { return Outcome{Kind: OutcomeRedirect, Redirect: to} }

// LayerFunc is one cross-cutting concern's hook at one layer: a stateless
// function `Wave → Wave | Absorb | Redirect(Surface)`.
type LayerFunc func(w wave.Wave) Outcome
