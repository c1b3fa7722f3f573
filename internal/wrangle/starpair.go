// Package wrangle implements the per-star wrangle table (spec.md §4.8): a
// kind-selector-keyed round-robin selector over discovered peer stars,
// used to locate a star able to host a particle kind this star doesn't
// host itself.
package wrangle

import "github.com/starlane-io/starlane/internal/point"

// StarPair is a canonical unordered pair of stars, used as a stable
// tie-break when two StarDiscovery entries share the same hop count.
// StarPair::new always stores the smaller key first.
type StarPair struct {
	A, B point.StarKey
}

// NewStarPair builds the canonical pair for a and b, ordering the smaller
// key first.
func NewStarPair(a, b point.StarKey) StarPair {
	if a.Less(b) {
		return StarPair{A: a, B: b}
	}
	return StarPair{A: b, B: a}
}

// Not returns the other end of the pair given one end, per spec.md's
// `not(self)`.
func (p StarPair) Not(self point.StarKey) point.StarKey {
	if p.A.Equal(self) {
		return p.B
	}
	return p.A
}

// Compare orders pairs by A then B, giving StarDiscovery entries a
// deterministic tie-break when hop counts are equal.
func (p StarPair) Compare(o StarPair) int {
	if c := p.A.Compare(o.A); c != 0 {
		return c
	}
	return p.B.Compare(o.B)
}

func (p StarPair) String() string {
	return p.A.String() + "/" + p.B.String()
}
