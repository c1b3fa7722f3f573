// Package search implements the inter-star search/discovery protocol
// (spec.md §4.8's Hyp<Search>): a Star/StarKind/Kinds query, answered by
// a forwarder-kind star ripple-ing the query to its adjacents and
// unioning the Discoveries it gets back, or by a non-forwarder simply
// contributing its own discovery and stopping.
package search

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/spaceerr"
	"github.com/starlane-io/starlane/internal/wave"
	"github.com/starlane-io/starlane/internal/wrangle"
)

var searchJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind tags the Search tagged union's three variants.
type Kind int

const (
	// Star asks "does star_key exist, and what can it host?"
	Star Kind = iota
	// StarKind asks "which stars of this kind are reachable?"
	StarKind
	// Kinds asks "what kinds are reachable, from any star?"
	Kinds
)

// Query is the Hyp<Search> payload: exactly one of StarKey (Kind==Star)
// or StarSub (Kind==StarKind) is meaningful; Kinds carries neither.
type Query struct {
	Kind    Kind
	StarKey point.StarKey
	StarSub point.StarSub
}

// ForStar builds a Star-variant query.
func ForStar(key point.StarKey) Query { return Query{Kind: Star, StarKey: key} }

// ForStarKind builds a StarKind-variant query.
func ForStarKind(sub point.StarSub) Query { return Query{Kind: StarKind, StarSub: sub} }

// ForKinds builds a Kinds-variant query.
func ForKinds() Query { return Query{Kind: Kinds} }

// EncodeQuery serializes a Query into a directed wave's body.
func EncodeQuery(q Query) wave.Substance {
	data, err := searchJSON.Marshal(q)
	if err != nil {
		return wave.Empty()
	}
	return wave.BinSubstance(data)
}

// DecodeQuery reads back a Query previously built by EncodeQuery.
func DecodeQuery(s wave.Substance) (Query, bool) {
	if s.Kind != wave.SubstanceBin {
		return Query{}, false
	}
	var q Query
	if err := searchJSON.Unmarshal(s.Bin, &q); err != nil {
		return Query{}, false
	}
	return q, true
}

// EncodeDiscoveries serializes a Discoveries reflected-core body.
func EncodeDiscoveries(ds []wrangle.Discovery) wave.Substance {
	data, err := searchJSON.Marshal(ds)
	if err != nil {
		return wave.Empty()
	}
	return wave.BinSubstance(data)
}

// DecodeDiscoveries reads back a Discoveries body. An Empty substance (a
// star with nothing to contribute) decodes to an empty, non-error slice.
func DecodeDiscoveries(s wave.Substance) ([]wrangle.Discovery, error) {
	if s.Kind == wave.SubstanceEmpty {
		return nil, nil
	}
	if s.Kind != wave.SubstanceBin {
		return nil, spaceerr.ExpectedSubstance(string(wave.SubstanceBin), string(s.Kind))
	}
	var ds []wrangle.Discovery
	if err := searchJSON.Unmarshal(s.Bin, &ds); err != nil {
		return nil, err
	}
	return ds, nil
}
