package search

import (
	"context"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/transmit"
	"github.com/starlane-io/starlane/internal/wave"
	"github.com/starlane-io/starlane/internal/wrangle"
)

// Adjacency is the capability a Wrangler needs to find this star's live
// neighbors — the same contract hyperlane.Router exposes, restated here
// to avoid an import cycle.
type Adjacency interface {
	Adjacents() []point.StarKey
}

// Wrangler builds the sub-search ripple spec.md §4.8 describes: a Ripple
// carrying history ∪ {self}, sent to every adjacent not already in that
// history, awaited with BounceBacks::Count(len(targets)), its echoed
// Discoveries unioned together.
type Wrangler struct {
	Self      point.StarKey
	Adjacency Adjacency
}

// SubSearch ripples query to every adjacent not already in history and
// returns the union of their Discoveries. Returns (nil, nil) if there are
// no unvisited adjacents to ripple to.
func (w *Wrangler) SubSearch(tx *transmit.Transmitter, history map[string]struct{}, query Query) ([]wrangle.Discovery, error) {
	newHistory := make(map[string]struct{}, len(history)+1)
	for k := range history {
		newHistory[k] = struct{}{}
	}
	newHistory[w.Self.String()] = struct{}{}

	var targets []point.Surface
	for _, adj := range w.Adjacency.Adjacents() {
		if _, visited := history[adj.String()]; visited {
			continue
		}
		targets = append(targets, point.AtCore(adj.StarPoint()))
	}
	if len(targets) == 0 {
		return nil, nil
	}

	proto := transmit.Proto{
		Kind:    wave.KindRipple,
		To:      wave.ToMulti(targets),
		Method:  wave.Hyp(wave.HypSearch),
		Body:    EncodeQuery(query),
		Bounce:  countBounce(len(targets)),
		History: newHistory,
	}

	agg, err := transmit.Ripple(context.Background(), tx, proto)
	if err != nil {
		return nil, err
	}

	var union []wrangle.Discovery
	for _, echo := range agg {
		ds, err := DecodeDiscoveries(echo.ReflectedCore.Body)
		if err != nil {
			continue
		}
		union = append(union, ds...)
	}
	return union, nil
}

func countBounce(n int) *wave.BounceBacks {
	b := wave.CountBounce(n)
	return &b
}
