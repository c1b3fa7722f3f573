package wrangle

import (
	"fmt"
	"sync"

	"github.com/starlane-io/starlane/internal/infra/healing"
	"github.com/starlane-io/starlane/internal/point"
)

// breakerConfig tunes how many recorded failures against a peer star (the
// forwarded Hyp<Assign> calls star.Provision reports; each success takes
// one failure back off the count) a wrangle entry tolerates before it's
// excluded from selection, and how long it stays excluded before calls
// are let through again.
var breakerConfig = healing.DefaultCircuitBreakerConfig()

// Table is a star's wrangle table: a per-kind-selector map of
// RoundRobinWrangleSelector, plus a per-peer-star circuit breaker used to
// exclude unreachable stars from the candidate set before any selector
// sees them (the [EXPANSION] wrangle circuit breaking spec.md's base
// text doesn't itself describe).
type Table struct {
	self point.StarKey

	mu        sync.Mutex
	selectors map[point.Selector]*RoundRobinWrangleSelector

	breakersMu sync.Mutex
	breakers   map[string]*healing.CircuitBreaker
}

// NewTable builds an empty wrangle table for the given star.
func NewTable(self point.StarKey) *Table {
	return &Table{
		self:      self,
		selectors: make(map[point.Selector]*RoundRobinWrangleSelector),
		breakers:  make(map[string]*healing.CircuitBreaker),
	}
}

// Insert records a Discovery, inserting one StarDiscovery entry per kind
// selector it carries, per spec.md §4.8 ("each discovery's kinds set
// yields one insert per selector").
func (t *Table) Insert(d Discovery) {
	pair := NewStarPair(t.self, d.StarKey)
	entry := StarDiscovery{Pair: pair, Discovery: d}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, kind := range d.Kinds {
		sel, ok := t.selectors[kind]
		if !ok {
			sel = NewRoundRobinWrangleSelector(kind)
			t.selectors[kind] = sel
		}
		sel.Insert(entry)
	}
}

// Wrangle selects the next peer star able to host kind, skipping any
// star whose circuit breaker is currently open. Returns false if no kind
// selector is registered, or every candidate for it is currently broken.
func (t *Table) Wrangle(kind point.Selector) (point.StarKey, bool) {
	t.mu.Lock()
	sel, ok := t.selectors[kind]
	t.mu.Unlock()
	if !ok {
		return point.StarKey{}, false
	}

	// step_index candidates are tried round-robin; a single broken entry
	// does not expand the shard, it's simply skipped in favor of the
	// next round-robin turn, matching real deployments where wrangle()
	// must not hand back a star known to be down.
	for attempt := 0; attempt < sel.Len(); attempt++ {
		key, ok := sel.Wrangle()
		if !ok {
			return point.StarKey{}, false
		}
		if t.breakerFor(key).Allow() == nil {
			return key, true
		}
	}
	return point.StarKey{}, false
}

// RecordSuccess records a successful call to a peer star: it takes one
// failure off a closed breaker's count, or counts toward closing a
// half-open one.
func (t *Table) RecordSuccess(key point.StarKey) {
	t.breakerFor(key).RecordSuccess()
}

// RecordFailure records a failed call to a peer star,
// possibly tripping its breaker open.
func (t *Table) RecordFailure(key point.StarKey) {
	t.breakerFor(key).RecordFailure()
}

func (t *Table) breakerFor(key point.StarKey) *healing.CircuitBreaker {
	name := key.String()
	t.breakersMu.Lock()
	defer t.breakersMu.Unlock()
	cb, ok := t.breakers[name]
	if !ok {
		cb = healing.NewCircuitBreaker(name, breakerConfig)
		t.breakers[name] = cb
	}
	return cb
}

// Verify returns an error naming the first kind selector in kinds that has
// no registered entry, per spec.md §4.8 ("verify(&[kinds]) returns error
// if any required kind has no entry; used on startup to block readiness
// until required peer kinds are reachable").
func (t *Table) Verify(kinds []point.Selector) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, kind := range kinds {
		sel, ok := t.selectors[kind]
		if !ok || sel.Len() == 0 {
			return fmt.Errorf("wrangle: no reachable star for required kind %s", kind)
		}
	}
	return nil
}
