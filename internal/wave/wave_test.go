package wave

import (
	"testing"

	"github.com/starlane-io/starlane/internal/point"
)

func surface(name string) point.Surface {
	return point.AtCore(point.Root().Push(point.Segment{Kind: point.SegBase, Value: name}))
}

func TestReflectToDefaultsToFrom(t *testing.T) {
	w := NewDirected(KindPing, surface("alice"), ToSingle(surface("bob")), DirectedCore{Method: Hyp(HypBounce)})
	if got, want := w.ReflectTo().String(), surface("alice").String(); got != want {
		t.Fatalf("ReflectTo() = %q, want %q", got, want)
	}
}

func TestReflectToUsesVia(t *testing.T) {
	via := surface("waypoint")
	w := NewDirected(KindPing, surface("alice"), ToSingle(surface("bob")), DirectedCore{})
	w.Via = &via
	if got, want := w.ReflectTo().String(), via.String(); got != want {
		t.Fatalf("ReflectTo() = %q, want %q", got, want)
	}
}

func TestReflectCarriesReflectionOf(t *testing.T) {
	ping := NewDirected(KindPing, surface("alice"), ToSingle(surface("bob")), DirectedCore{})
	pong := ping.Reflect(surface("bob"), OKCore(TextSubstance("pong")))

	if !pong.ReflectionOf.Equal(ping.ID) {
		t.Fatalf("reflection_of = %v, want %v", pong.ReflectionOf, ping.ID)
	}
	if pong.ID.Kind != KindPong {
		t.Fatalf("reflected kind = %v, want Pong", pong.ID.Kind)
	}
	if !pong.To.Matches(surface("alice")) {
		t.Fatal("pong should be addressed back to the ping's reflect_to surface")
	}
}

func TestRippleReflectsToEcho(t *testing.T) {
	ripple := NewDirected(KindRipple, surface("alice"), ToStars(), DirectedCore{})
	echo := ripple.Reflect(surface("star-a"), OKCore(Empty()))
	if echo.ID.Kind != KindEcho {
		t.Fatalf("reflected kind = %v, want Echo", echo.ID.Kind)
	}
}

func TestTimeoutSynthesizesReflection(t *testing.T) {
	ping := NewDirected(KindPing, surface("alice"), ToSingle(surface("bob")), DirectedCore{})
	to := ping.Timeout()
	if to.ReflectedCore.Status != 408 {
		t.Fatalf("timeout status = %d, want 408", to.ReflectedCore.Status)
	}
	if to.ReflectedCore.Body.Kind != SubstanceEmpty {
		t.Fatalf("timeout body kind = %v", to.ReflectedCore.Body.Kind)
	}
}

func TestHopsIncrementAndMaxHops(t *testing.T) {
	w := NewDirected(KindSignal, surface("alice"), ToSingle(surface("bob")), DirectedCore{})
	for i := 0; i < MaxHops; i++ {
		w = w.IncrementHops()
	}
	if w.ExceedsMaxHops() {
		t.Fatal("hops == MaxHops should not yet exceed")
	}
	w = w.IncrementHops()
	if !w.ExceedsMaxHops() {
		t.Fatal("hops == MaxHops+1 should exceed")
	}
}

func TestRippleHistoryDedup(t *testing.T) {
	w := NewDirected(KindRipple, surface("alice"), ToStars(), DirectedCore{})
	if w.VisitedHistory("star-a") {
		t.Fatal("fresh ripple should have empty history")
	}
	w = w.WithHistoryVisit("star-a")
	if !w.VisitedHistory("star-a") {
		t.Fatal("expected star-a to be recorded after WithHistoryVisit")
	}
	if w.VisitedHistory("star-b") {
		t.Fatal("star-b was never visited")
	}
}

func TestBounceBacksForDefaults(t *testing.T) {
	b, ok := BounceBacksFor(KindPing)
	if !ok || b.Kind != BounceSingle {
		t.Fatalf("Ping default bounce = %v,%v want Single,true", b, ok)
	}
	b, ok = BounceBacksFor(KindSignal)
	if !ok || b.Kind != BounceNone {
		t.Fatalf("Signal default bounce = %v,%v want None,true", b, ok)
	}
	if _, ok := BounceBacksFor(KindRipple); ok {
		t.Fatal("Ripple has no universal default bounce policy")
	}
}

func TestUltraWaveSubstanceRoundTrip(t *testing.T) {
	inner := NewDirected(KindPing, surface("alice"), ToSingle(surface("bob")), DirectedCore{Method: Hyp(HypBounce)})
	s := UltraWaveSubstance(inner)

	got, ok := s.AsUltraWave()
	if !ok {
		t.Fatal("expected AsUltraWave to succeed")
	}
	if !got.ID.Equal(inner.ID) {
		t.Fatalf("boxed wave id = %v, want %v", got.ID, inner.ID)
	}
}

func TestWaveIDShortForm(t *testing.T) {
	id := NewID(KindPing)
	short := id.Short()
	if len(short) < len("<Wave<Ping>>::")+8 {
		t.Fatalf("short form too short: %q", short)
	}
}
