package exchange

import (
	"testing"
	"time"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/wave"
)

func surface(name string) point.Surface {
	return point.AtCore(point.Root().Push(point.Segment{Kind: point.SegBase, Value: name}))
}

func ping(bounce wave.BounceBacks) wave.Wave {
	w := wave.NewDirected(wave.KindPing, surface("alice"), wave.ToSingle(surface("bob")), wave.DirectedCore{})
	w.Bounce = bounce
	return w
}

func TestNoBounceCompletesImmediately(t *testing.T) {
	e := New()
	out, cancel := e.Open(ping(wave.NoBounce()))
	defer cancel()

	agg := <-out
	if len(agg) != 0 {
		t.Fatalf("expected empty aggregate, got %d", len(agg))
	}
	if e.Pending() != 0 {
		t.Fatal("BounceNone should never register a slot")
	}
}

func TestCountZeroCompletesImmediately(t *testing.T) {
	e := New()
	out, cancel := e.Open(ping(wave.CountBounce(0)))
	defer cancel()

	agg := <-out
	if len(agg) != 0 {
		t.Fatalf("expected empty aggregate, got %d", len(agg))
	}
}

func TestSingleBounceCompletesOnFirstReflection(t *testing.T) {
	e := New()
	p := ping(wave.SingleBounce())
	out, cancel := e.Open(p)
	defer cancel()

	pong := p.Reflect(surface("bob"), wave.OKCore(wave.TextSubstance("pong")))
	if !e.Deliver(pong) {
		t.Fatal("expected Deliver to find the open slot")
	}

	agg := <-out
	if len(agg) != 1 {
		t.Fatalf("expected 1 reflection, got %d", len(agg))
	}
	if !agg[0].ReflectionOf.Equal(p.ID) {
		t.Fatal("delivered reflection should correlate to the directed wave")
	}
	if e.Pending() != 0 {
		t.Fatal("slot should be removed on completion")
	}
}

func TestCountBounceAggregates(t *testing.T) {
	e := New()
	p := ping(wave.CountBounce(3))
	out, cancel := e.Open(p)
	defer cancel()

	for i := 0; i < 3; i++ {
		echo := p.Reflect(surface("bob"), wave.OKCore(wave.Empty()))
		if !e.Deliver(echo) {
			t.Fatalf("delivery %d should be accepted", i)
		}
	}

	agg := <-out
	if len(agg) != 3 {
		t.Fatalf("expected 3 reflections, got %d", len(agg))
	}
}

func TestTimerBounceAccumulatesUntilElapsed(t *testing.T) {
	e := New()
	p := ping(wave.TimerBounce(30 * time.Millisecond))
	out, cancel := e.Open(p)
	defer cancel()

	e.Deliver(p.Reflect(surface("bob"), wave.OKCore(wave.Empty())))
	e.Deliver(p.Reflect(surface("carol"), wave.OKCore(wave.Empty())))

	agg := <-out
	if len(agg) != 2 {
		t.Fatalf("expected 2 reflections before timer elapsed, got %d", len(agg))
	}
}

func TestSingleBounceTimesOutWith408(t *testing.T) {
	orig := wave.Timeouts[wave.WaitHigh]
	wave.Timeouts[wave.WaitHigh] = 20 * time.Millisecond
	defer func() { wave.Timeouts[wave.WaitHigh] = orig }()

	e := New()
	p := ping(wave.SingleBounce())
	p.Handling.Wait = wave.WaitHigh
	out, cancel := e.Open(p)
	defer cancel()

	agg := <-out
	if len(agg) != 1 {
		t.Fatalf("expected synthesized timeout reflection, got %d entries", len(agg))
	}
	if agg[0].ReflectedCore.Status != 408 {
		t.Fatalf("expected status 408, got %d", agg[0].ReflectedCore.Status)
	}
	if e.Pending() != 0 {
		t.Fatal("slot should be removed after timeout")
	}
}

func TestCancelDropsSlotLazily(t *testing.T) {
	e := New()
	p := ping(wave.CountBounce(2))
	out, cancel := e.Open(p)

	if e.Pending() != 1 {
		t.Fatal("expected 1 pending slot after Open")
	}
	cancel()

	select {
	case _, ok := <-out:
		if ok {
			t.Fatal("expected channel to close with no value after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("cancel should close the result channel promptly")
	}
}

func TestDeliverWithNoSlotReturnsFalse(t *testing.T) {
	e := New()
	p := ping(wave.SingleBounce())
	orphan := p.Reflect(surface("bob"), wave.OKCore(wave.Empty()))
	if e.Deliver(orphan) {
		t.Fatal("expected Deliver to reject a reflection with no open slot")
	}
}

func TestLateDeliveryAfterCompletionIsRejected(t *testing.T) {
	e := New()
	p := ping(wave.SingleBounce())
	out, cancel := e.Open(p)
	defer cancel()

	first := p.Reflect(surface("bob"), wave.OKCore(wave.Empty()))
	e.Deliver(first)
	<-out

	late := p.Reflect(surface("carol"), wave.OKCore(wave.Empty()))
	if e.Deliver(late) {
		t.Fatal("a reflection arriving after the slot completed must be rejected")
	}
}
