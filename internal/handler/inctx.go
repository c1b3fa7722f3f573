package handler

import (
	"log"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/transmit"
	"github.com/starlane-io/starlane/internal/wave"
)

// InCtx is the view a matched route is invoked with: the root wave plus
// convenience accessors and a nested-send capability, per spec.md §4.6
// ("InCtx<'_, BodyType> view over the root context... exposes from(),
// to(), wave(), transmitter, logger, and the typed body reference").
//
// Go has no lifetime-scoped generic specialization of the body type the
// way the original does, so InCtx carries the untyped DirectedCore; a
// route narrows the body itself by type-switching on Body.Kind or
// re-decoding a Hyper substance. PushInputRef (the equivalent of
// push_input_ref) re-points the context at a nested sub-core.
type InCtx struct {
	root wave.Wave

	Transmitter *transmit.Transmitter
	Logger      *log.Logger
}

// NewInCtx builds the root InCtx for a directed wave about to be
// dispatched.
func NewInCtx(w wave.Wave, tx *transmit.Transmitter, logger *log.Logger) InCtx {
	return InCtx{root: w, Transmitter: tx, Logger: logger}
}

// From returns the wave's originating surface.
func (c InCtx) From() point.Surface { return c.root.From }

// To returns the surface this wave was addressed to.
func (c InCtx) To() point.Surface {
	if c.root.To.Kind == wave.RecipientsSingle {
		return c.root.To.Single
	}
	return point.Surface{}
}

// Wave returns the full root wave.
func (c InCtx) Wave() wave.Wave { return c.root }

// Body returns the directed core's body substance.
func (c InCtx) Body() wave.Substance { return c.root.Core.Body }

// URI returns the directed core's URI.
func (c InCtx) URI() string { return c.root.Core.URI }

// PushInputRef narrows the context to a sub-wave for nested dispatch
// without losing the root's From/To/Transmitter/Logger — spec.md's
// `ctx.push_input_ref(&sub)`. The returned InCtx reports the sub-wave
// from Wave()/Body()/URI() but keeps the original From()/To().
func (c InCtx) PushInputRef(sub wave.DirectedCore) InCtx {
	narrowed := c.root
	narrowed.Core = sub
	return InCtx{root: narrowed, Transmitter: c.Transmitter, Logger: c.Logger}
}
