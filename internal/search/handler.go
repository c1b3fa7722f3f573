package search

import (
	"time"

	"github.com/starlane-io/starlane/internal/catalog"
	"github.com/starlane-io/starlane/internal/handler"
	"github.com/starlane-io/starlane/internal/metrics"
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/traversal"
	"github.com/starlane-io/starlane/internal/wave"
	"github.com/starlane-io/starlane/internal/wrangle"
)

// Handler answers Hyp<Search> waves (spec.md §4.8): it decides whether
// this star contributes its own Discovery, ripples onward via Wrangler,
// or both, depending on the query variant and whether this star's kind
// is a forwarder (catalog.IsForwarder).
type Handler struct {
	Self    point.StarKey
	SelfSub point.StarSub

	// OwnKinds reports the particle-kind selectors this star currently
	// hosts locally — the "external kinds" a Kinds query or a matching
	// StarKind query contributes.
	OwnKinds func() []point.Selector

	Wrangler *Wrangler
}

// Route registers this handler under Hyp<Search> on r.
func (h *Handler) Route(r *handler.Router) {
	r.Route(handler.HypSelector(wave.HypSearch), h.Handle)
}

// Handle implements handler.HandlerFunc.
func (h *Handler) Handle(ctx handler.InCtx) traversal.CoreBounce {
	query, ok := DecodeQuery(ctx.Body())
	if !ok {
		return traversal.ReflectedBounce(wave.ErrCore(400, "malformed search query"))
	}

	queryKind := queryKindLabel(query.Kind)
	start := time.Now()

	var discoveries []wrangle.Discovery
	switch query.Kind {
	case Star:
		discoveries = h.handleStar(ctx, query)
	case StarKind:
		discoveries = h.handleStarKind(ctx, query)
	case Kinds:
		discoveries = h.handleKinds(ctx, query)
	}

	metrics.SearchLatency.WithLabelValues(queryKind).Observe(time.Since(start).Seconds())
	metrics.SearchResults.WithLabelValues(queryKind).Observe(float64(len(discoveries)))

	return traversal.ReflectedBounce(wave.OKCore(EncodeDiscoveries(discoveries)))
}

func queryKindLabel(k Kind) string {
	switch k {
	case Star:
		return "star"
	case StarKind:
		return "star_kind"
	case Kinds:
		return "kinds"
	default:
		return "unknown"
	}
}

func (h *Handler) handleStar(ctx handler.InCtx, query Query) []wrangle.Discovery {
	if query.StarKey.Equal(h.Self) {
		return []wrangle.Discovery{h.selfDiscovery()}
	}
	if !catalog.IsForwarder(h.SelfSub) {
		return nil
	}
	union, _ := h.Wrangler.SubSearch(ctx.Transmitter, ctx.Wave().History, query)
	return bumpHops(union)
}

func (h *Handler) handleStarKind(ctx handler.InCtx, query Query) []wrangle.Discovery {
	matches := query.StarSub == h.SelfSub
	if !catalog.IsForwarder(h.SelfSub) {
		if matches {
			return []wrangle.Discovery{h.selfDiscovery()}
		}
		return nil
	}
	union, _ := h.Wrangler.SubSearch(ctx.Transmitter, ctx.Wave().History, query)
	union = bumpHops(union)
	if matches {
		union = append(union, h.selfDiscovery())
	}
	return union
}

func (h *Handler) handleKinds(ctx handler.InCtx, query Query) []wrangle.Discovery {
	own := h.selfDiscovery()
	if !catalog.IsForwarder(h.SelfSub) {
		return []wrangle.Discovery{own}
	}
	union, _ := h.Wrangler.SubSearch(ctx.Transmitter, ctx.Wave().History, query)
	return append(bumpHops(union), own)
}

// bumpHops adds one hop to each discovery in ds: they were reported
// relative to the neighbor that answered this star's sub-search ripple,
// one hyperlane hop further from the original querier than that neighbor
// itself.
func bumpHops(ds []wrangle.Discovery) []wrangle.Discovery {
	bumped := make([]wrangle.Discovery, len(ds))
	for i, d := range ds {
		d.Hops++
		bumped[i] = d
	}
	return bumped
}

func (h *Handler) selfDiscovery() wrangle.Discovery {
	return wrangle.Discovery{
		StarKind: h.SelfSub,
		Hops:     0,
		StarKey:  h.Self,
		Kinds:    h.OwnKinds(),
	}
}
