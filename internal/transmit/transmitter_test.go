package transmit

import (
	"context"
	"testing"
	"time"

	"github.com/starlane-io/starlane/internal/exchange"
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/wave"
)

func surface(name string) point.Surface {
	return point.AtCore(point.Root().Push(point.Segment{Kind: point.SegBase, Value: name}))
}

// loopbackRouter immediately reflects any directed wave it routes, as if
// the destination answered synchronously — enough to exercise the
// Transmitter without a real traversal pipeline.
type loopbackRouter struct {
	exchanger *exchange.Exchanger
	status    int
	body      wave.Substance
	fromHint  point.Surface
}

func (r *loopbackRouter) Route(w wave.Wave) error {
	if !w.ID.Kind.Directed() {
		return nil // reflections just vanish in this fake
	}
	rk, ok := w.ID.Kind.ReflectionKind()
	if !ok {
		return nil // Signal: absorbed
	}
	_ = rk
	reflection := w.Reflect(r.fromHint, wave.NewReflectedCore(r.status, r.body))
	r.exchanger.Deliver(reflection)
	return nil
}

func newFixture(status int, body wave.Substance) (*Transmitter, *loopbackRouter) {
	ex := exchange.New()
	router := &loopbackRouter{exchanger: ex, status: status, body: body, fromHint: surface("bob")}
	tx := New(Defaults{
		From:     surface("alice"),
		Agent:    wave.Anonymous(),
		Handling: wave.DefaultHandling(),
	}, router, ex)
	return tx, router
}

func TestPingFillsFromAndReturnsPong(t *testing.T) {
	tx, _ := newFixture(200, wave.TextSubstance("ok"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	pong, err := Ping(ctx, tx, PingProto(surface("bob"), wave.Hyp(wave.HypBounce), wave.Empty()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pong.ID.Kind != wave.KindPong {
		t.Fatalf("expected Pong, got %v", pong.ID.Kind)
	}
	// The pong is addressed to the ping's from, which fill set to the
	// transmitter's own surface.
	if !pong.To.Matches(surface("alice")) {
		t.Fatalf("pong addressed to %v, want alice", pong.To)
	}
	text, _ := pong.ReflectedCore.Body.AsText()
	if text != "ok" {
		t.Fatalf("body = %q, want ok", text)
	}
}

func TestPingNonOKStatusSurfacesAsError(t *testing.T) {
	tx, _ := newFixture(404, wave.TextSubstance("not found"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Ping(ctx, tx, PingProto(surface("bob"), wave.Hyp(wave.HypBounce), wave.Empty()))
	if err == nil {
		t.Fatal("expected an error for a 404 reflection")
	}
}

func TestMethodRequiredByFill(t *testing.T) {
	tx, _ := newFixture(200, wave.Empty())
	ctx := context.Background()
	_, err := Ping(ctx, tx, Proto{To: wave.ToSingle(surface("bob"))})
	if err == nil {
		t.Fatal("expected an error when method is unset")
	}
}

func TestRippleWithNoExplicitBounceRequiresOne(t *testing.T) {
	tx, _ := newFixture(200, wave.Empty())
	ctx := context.Background()
	_, err := Ripple(ctx, tx, Proto{To: wave.ToStars(), Method: wave.Hyp(wave.HypSearch)})
	if err == nil {
		t.Fatal("expected an error: Ripple has no universal default bounce policy")
	}
}

func TestSignalNeverOpensASlot(t *testing.T) {
	tx, _ := newFixture(200, wave.Empty())
	err := Signal(tx, Proto{To: wave.ToSingle(surface("bob")), Method: wave.Hyp(wave.HypHop)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.Exchanger.Pending() != 0 {
		t.Fatal("Signal must never register an exchanger slot")
	}
}

func TestBounceReportsLiveness(t *testing.T) {
	tx, _ := newFixture(200, wave.Empty())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	alive, err := Bounce(ctx, tx, surface("bob"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !alive {
		t.Fatal("expected Bounce to report liveness true on a 2xx reflection")
	}
}

func TestReflectRoutesWithoutExchangerSlot(t *testing.T) {
	tx, router := newFixture(200, wave.Empty())
	_ = router
	incoming := wave.NewDirected(wave.KindPing, surface("bob"), wave.ToSingle(surface("alice")), wave.DirectedCore{})
	if err := tx.Reflect(incoming, wave.OKCore(wave.TextSubstance("done"))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
