package wrangle

import (
	"sort"
	"sync"

	"github.com/starlane-io/starlane/internal/point"
)

// RoundRobinWrangleSelector is the selector behind one kind in a star's
// wrangle table: a sorted list of StarDiscovery entries plus the rolling
// index spec.md §4.8 describes. Insert re-sorts by (hops asc, pair asc)
// and recomputes stepIndex, the count of entries sharing the minimum hop
// count — wrangle() only round-robins over that closest shard.
type RoundRobinWrangleSelector struct {
	mu sync.Mutex

	kind  point.Selector
	stars []StarDiscovery

	index     uint64
	stepIndex int
}

// NewRoundRobinWrangleSelector builds an empty selector for the given
// kind selector.
func NewRoundRobinWrangleSelector(kind point.Selector) *RoundRobinWrangleSelector {
	return &RoundRobinWrangleSelector{kind: kind}
}

// Insert adds or replaces the entry for d.Pair, re-sorts, and recomputes
// stepIndex.
func (s *RoundRobinWrangleSelector) Insert(d StarDiscovery) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i, existing := range s.stars {
		if existing.Pair == d.Pair {
			s.stars[i] = d
			replaced = true
			break
		}
	}
	if !replaced {
		s.stars = append(s.stars, d)
	}

	sort.Slice(s.stars, func(i, j int) bool { return less(s.stars[i], s.stars[j]) })
	s.stepIndex = computeStepIndex(s.stars)
}

// Remove drops the entry for the given pair, if present, and recomputes
// stepIndex.
func (s *RoundRobinWrangleSelector) Remove(pair StarPair) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.stars {
		if existing.Pair == pair {
			s.stars = append(s.stars[:i], s.stars[i+1:]...)
			break
		}
	}
	s.stepIndex = computeStepIndex(s.stars)
}

// Wrangle advances the round-robin index and returns the next star key
// among the closest shard (the stepIndex entries sharing the minimum hop
// count). Returns false if the selector has no entries.
func (s *RoundRobinWrangleSelector) Wrangle() (point.StarKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stepIndex == 0 {
		return point.StarKey{}, false
	}
	idx := s.index % uint64(s.stepIndex)
	s.index++
	return s.stars[idx].Discovery.StarKey, true
}

// Len reports how many entries the selector currently holds.
func (s *RoundRobinWrangleSelector) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stars)
}

func computeStepIndex(sorted []StarDiscovery) int {
	if len(sorted) == 0 {
		return 0
	}
	min := sorted[0].Discovery.Hops
	n := 0
	for _, d := range sorted {
		if d.Discovery.Hops != min {
			break
		}
		n++
	}
	return n
}
