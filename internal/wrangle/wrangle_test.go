package wrangle

import (
	"testing"

	"github.com/starlane-io/starlane/internal/point"
)

func star(name string) point.StarKey {
	return point.StarKey{Constellation: "local", Name: name, Index: 0}
}

func repoKind() point.Selector {
	return point.Selector{Discriminant: point.KindBase, Sub: "Repo"}
}

func TestStarPairCanonicalOrdering(t *testing.T) {
	a, b := star("alpha"), star("beta")
	p1 := NewStarPair(a, b)
	p2 := NewStarPair(b, a)
	if p1 != p2 {
		t.Fatalf("expected canonical pairs to be equal: %v != %v", p1, p2)
	}
	if p1.Not(a) != b {
		t.Fatalf("Not(a) = %v, want %v", p1.Not(a), b)
	}
	if p1.Not(b) != a {
		t.Fatalf("Not(b) = %v, want %v", p1.Not(b), a)
	}
}

func TestRoundRobinOverClosestShard(t *testing.T) {
	self := star("self")
	kind := repoKind()
	sel := NewRoundRobinWrangleSelector(kind)

	near1 := star("near1")
	near2 := star("near2")
	far := star("far")

	sel.Insert(StarDiscovery{Pair: NewStarPair(self, near1), Discovery: Discovery{StarKey: near1, Hops: 1, Kinds: []point.Selector{kind}}})
	sel.Insert(StarDiscovery{Pair: NewStarPair(self, near2), Discovery: Discovery{StarKey: near2, Hops: 1, Kinds: []point.Selector{kind}}})
	sel.Insert(StarDiscovery{Pair: NewStarPair(self, far), Discovery: Discovery{StarKey: far, Hops: 2, Kinds: []point.Selector{kind}}})

	counts := map[point.StarKey]int{}
	for i := 0; i < 100; i++ {
		k, ok := sel.Wrangle()
		if !ok {
			t.Fatal("expected a wrangle result")
		}
		counts[k]++
	}

	if counts[far] != 0 {
		t.Fatalf("hops=2 star should never be selected, got %d", counts[far])
	}
	if counts[near1] != 50 || counts[near2] != 50 {
		t.Fatalf("expected an even 50/50 split, got %v", counts)
	}
}

func TestTableInsertYieldsOneSelectorPerKind(t *testing.T) {
	self := star("self")
	table := NewTable(self)
	peer := star("peer")
	otherKind := point.Selector{Discriminant: point.KindBase, Sub: "Other"}

	table.Insert(Discovery{StarKey: peer, Hops: 1, Kinds: []point.Selector{repoKind(), otherKind}})

	if _, ok := table.Wrangle(repoKind()); !ok {
		t.Fatal("expected a wrangle result for repoKind")
	}
	if _, ok := table.Wrangle(otherKind); !ok {
		t.Fatal("expected a wrangle result for otherKind")
	}
	unregistered := point.Selector{Discriminant: point.KindBase, Sub: "Nope"}
	if _, ok := table.Wrangle(unregistered); ok {
		t.Fatal("expected no result for an unregistered kind selector")
	}
}

func TestTableExcludesBrokenStarFromSelection(t *testing.T) {
	self := star("self")
	table := NewTable(self)
	good := star("good")
	bad := star("bad")
	kind := repoKind()

	table.Insert(Discovery{StarKey: good, Hops: 1, Kinds: []point.Selector{kind}})
	table.Insert(Discovery{StarKey: bad, Hops: 1, Kinds: []point.Selector{kind}})

	for i := 0; i < breakerConfig.FailureThreshold; i++ {
		table.RecordFailure(bad)
	}

	seen := map[point.StarKey]int{}
	for i := 0; i < 20; i++ {
		k, ok := table.Wrangle(kind)
		if !ok {
			t.Fatal("expected a wrangle result")
		}
		seen[k]++
	}
	if seen[bad] != 0 {
		t.Fatalf("broken star should never be selected, got %d", seen[bad])
	}
	if seen[good] != 20 {
		t.Fatalf("good star should absorb all selections, got %v", seen)
	}
}

func TestWrangleOnEmptySelectorReturnsFalse(t *testing.T) {
	sel := NewRoundRobinWrangleSelector(repoKind())
	if _, ok := sel.Wrangle(); ok {
		t.Fatal("expected false on an empty selector")
	}
}
