package traversal

import (
	"testing"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/wave"
)

func surface(name string, layer point.Layer) point.Surface {
	return point.Surface{Point: point.Root().Push(point.Segment{Kind: point.SegBase, Value: name}), Layer: layer}
}

type recordingRouter struct {
	routed []wave.Wave
}

func (r *recordingRouter) Route(w wave.Wave) error {
	r.routed = append(r.routed, w)
	return nil
}

type fixedDispatcher struct {
	bounce CoreBounce
	got    []wave.Wave
}

func (d *fixedDispatcher) Handle(w wave.Wave) CoreBounce {
	d.got = append(d.got, w)
	return d.bounce
}

func TestInboundFromGravityReachesCoreAndReflects(t *testing.T) {
	router := &recordingRouter{}
	dispatcher := &fixedDispatcher{bounce: ReflectedBounce(wave.OKCore(wave.TextSubstance("done")))}
	self := surface("star", point.Core)
	p := NewPipeline(self, dispatcher, router)

	var visited []point.Layer
	for _, l := range []point.Layer{point.Gravity, point.Field, point.Shell, point.Core} {
		l := l
		p.Use(l, func(w wave.Wave) Outcome {
			visited = append(visited, l)
			return Continue(w)
		})
	}

	w := wave.NewDirected(wave.KindPing, surface("alice", point.Core), wave.ToSingle(self), wave.DirectedCore{Method: wave.Hyp(wave.HypBounce)})

	if err := p.Inject(w, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.got) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(dispatcher.got))
	}
	// Inbound Gravity→Core, then the reflection's outbound leg from the
	// originator's Core layer back out to Gravity.
	want := []point.Layer{point.Gravity, point.Field, point.Shell, point.Core, point.Core, point.Shell, point.Field, point.Gravity}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited[%d] = %v, want %v", i, visited[i], want[i])
		}
	}

	if len(router.routed) != 1 {
		t.Fatalf("expected 1 routed reflection, got %d", len(router.routed))
	}
	reflected := router.routed[0]
	if reflected.ID.Kind != wave.KindPong {
		t.Fatalf("reflected kind = %v, want Pong", reflected.ID.Kind)
	}
	if !reflected.ReflectionOf.Equal(w.ID) {
		t.Fatal("reflected wave should correlate to the original ping")
	}
}

func TestLocallyOriginatedInjectsAtOwnLayer(t *testing.T) {
	router := &recordingRouter{}
	dispatcher := &fixedDispatcher{bounce: AbsorbedBounce()}
	self := surface("star", point.Core)
	p := NewPipeline(self, dispatcher, router)

	var visited []point.Layer
	for _, l := range []point.Layer{point.Gravity, point.Field, point.Shell, point.Core} {
		l := l
		p.Use(l, func(w wave.Wave) Outcome {
			visited = append(visited, l)
			return Continue(w)
		})
	}

	w := wave.NewDirected(wave.KindSignal, surface("alice", point.Shell), wave.ToSingle(self), wave.DirectedCore{Method: wave.Hyp(wave.HypHop)})

	if err := p.Inject(w, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Locally-originated at Shell: should skip Gravity and Field.
	if len(visited) != 2 || visited[0] != point.Shell || visited[1] != point.Core {
		t.Fatalf("visited = %v, want [Shell Core]", visited)
	}
}

func TestLayerAbsorbStopsTraversal(t *testing.T) {
	router := &recordingRouter{}
	dispatcher := &fixedDispatcher{bounce: ReflectedBounce(wave.OKCore(wave.Empty()))}
	self := surface("star", point.Core)
	p := NewPipeline(self, dispatcher, router)

	p.Use(point.Field, func(w wave.Wave) Outcome { return Absorb() })
	p.Use(point.Core, func(w wave.Wave) Outcome { return Continue(w) })

	w := wave.NewDirected(wave.KindSignal, surface("alice", point.Core), wave.ToSingle(self), wave.DirectedCore{})
	if err := p.Inject(w, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.got) != 0 {
		t.Fatal("Core handler should never run once Field absorbs the wave")
	}
}

func TestLayerRedirectRoutesElsewhere(t *testing.T) {
	router := &recordingRouter{}
	dispatcher := &fixedDispatcher{bounce: AbsorbedBounce()}
	self := surface("star", point.Core)
	elsewhere := surface("moved", point.Core)
	p := NewPipeline(self, dispatcher, router)

	p.Use(point.Shell, func(w wave.Wave) Outcome { return Redirect(elsewhere) })

	w := wave.NewDirected(wave.KindSignal, surface("alice", point.Core), wave.ToSingle(self), wave.DirectedCore{})
	if err := p.Inject(w, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.got) != 0 {
		t.Fatal("Core handler should not run once a layer redirects")
	}
	if len(router.routed) != 1 || !router.routed[0].To.Matches(elsewhere) {
		t.Fatal("expected the wave to be routed to the redirect surface")
	}
}

func TestAbsorbedCoreBounceProducesNoReflection(t *testing.T) {
	router := &recordingRouter{}
	dispatcher := &fixedDispatcher{bounce: AbsorbedBounce()}
	self := surface("star", point.Core)
	p := NewPipeline(self, dispatcher, router)

	w := wave.NewDirected(wave.KindSignal, surface("alice", point.Core), wave.ToSingle(self), wave.DirectedCore{})
	if err := p.Inject(w, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(router.routed) != 0 {
		t.Fatal("Absorbed should never produce a routed reflection")
	}
}
