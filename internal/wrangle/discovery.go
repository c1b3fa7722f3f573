package wrangle

import "github.com/starlane-io/starlane/internal/point"

// Discovery is what a star reports about itself in response to a Search
// ripple: its own kind, the hop distance the reporting forwarder is at
// from the searcher, its star key, and the set of particle-kind
// selectors it can host.
type Discovery struct {
	StarKind point.StarSub
	Hops     int
	StarKey  point.StarKey
	Kinds    []point.Selector
}

// StarDiscovery pairs a Discovery with the canonical StarPair used to
// break sort ties deterministically when two discoveries share a hop
// count.
type StarDiscovery struct {
	Pair      StarPair
	Discovery Discovery
}

// less orders StarDiscovery entries by (hops asc, pair asc), the sort
// RoundRobinWrangleSelector maintains after every insert.
func less(a, b StarDiscovery) bool {
	if a.Discovery.Hops != b.Discovery.Hops {
		return a.Discovery.Hops < b.Discovery.Hops
	}
	return a.Pair.Compare(b.Pair) < 0
}
