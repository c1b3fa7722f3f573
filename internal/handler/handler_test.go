package handler

import (
	"testing"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/traversal"
	"github.com/starlane-io/starlane/internal/wave"
)

func surface(name string) point.Surface {
	return point.AtCore(point.Root().Push(point.Segment{Kind: point.SegBase, Value: name}))
}

func TestFirstMatchingRouteWins(t *testing.T) {
	r := NewRouter(nil, nil)
	var called []string
	r.Route(HypSelector(wave.HypAssign), func(ctx InCtx) traversal.CoreBounce {
		called = append(called, "assign")
		return traversal.AbsorbedBounce()
	})
	r.Route(HypSelector(wave.HypAssign), func(ctx InCtx) traversal.CoreBounce {
		called = append(called, "assign-2")
		return traversal.AbsorbedBounce()
	})

	w := wave.NewDirected(wave.KindSignal, surface("alice"), wave.ToSingle(surface("bob")),
		wave.DirectedCore{Method: wave.Hyp(wave.HypAssign)})

	r.Handle(w)

	if len(called) != 1 || called[0] != "assign" {
		t.Fatalf("called = %v, want [assign]", called)
	}
}

func TestNoMatchReflects404(t *testing.T) {
	r := NewRouter(nil, nil)
	w := wave.NewDirected(wave.KindPing, surface("alice"), wave.ToSingle(surface("bob")),
		wave.DirectedCore{Method: wave.Hyp(wave.HypKnock)})

	bounce := r.Handle(w)
	if bounce.Kind != traversal.Reflected {
		t.Fatalf("bounce.Kind = %v, want Reflected", bounce.Kind)
	}
	if bounce.Core.Status != 404 {
		t.Fatalf("status = %d, want 404", bounce.Core.Status)
	}
}

func TestNoMatchOnSignalAbsorbs(t *testing.T) {
	r := NewRouter(nil, nil)
	w := wave.NewDirected(wave.KindSignal, surface("alice"), wave.ToSingle(surface("bob")),
		wave.DirectedCore{Method: wave.Hyp(wave.HypKnock)})

	bounce := r.Handle(w)
	if bounce.Kind != traversal.Absorbed {
		t.Fatalf("bounce.Kind = %v, want Absorbed", bounce.Kind)
	}
}

func TestSelectorMatchesURIPrefixAndBodyKind(t *testing.T) {
	sel := HttpSelector("GET", "/files").WithBody(wave.SubstanceEmpty)

	matching := wave.DirectedCore{Method: wave.Http("GET"), URI: "/files/readme.txt", Body: wave.Empty()}
	if !sel.Accepts(matching) {
		t.Fatal("expected selector to accept matching method/uri/body")
	}

	wrongPrefix := matching
	wrongPrefix.URI = "/other/readme.txt"
	if sel.Accepts(wrongPrefix) {
		t.Fatal("expected selector to reject non-matching uri prefix")
	}

	wrongBody := matching
	wrongBody.Body = wave.TextSubstance("nope")
	if sel.Accepts(wrongBody) {
		t.Fatal("expected selector to reject non-matching body kind")
	}
}

func TestPushInputRefKeepsRootFromAndTo(t *testing.T) {
	from := surface("alice")
	to := surface("bob")
	w := wave.NewDirected(wave.KindPing, from, wave.ToSingle(to),
		wave.DirectedCore{Method: wave.Hyp(wave.HypKnock), Body: wave.TextSubstance("outer")})

	root := NewInCtx(w, nil, nil)
	sub := wave.DirectedCore{Method: wave.Ext("inner"), Body: wave.TextSubstance("inner")}
	narrowed := root.PushInputRef(sub)

	if !narrowed.From().Equal(from) {
		t.Fatal("narrowed InCtx should keep the root From()")
	}
	if !narrowed.To().Equal(to) {
		t.Fatal("narrowed InCtx should keep the root To()")
	}
	if narrowed.Body().Text != "inner" {
		t.Fatalf("narrowed Body() = %v, want inner", narrowed.Body())
	}
}

func TestDispatchedHandlerSeesMatchedWave(t *testing.T) {
	r := NewRouter(nil, nil)
	var seenURI string
	r.Route(HttpSelector("POST", "/widgets"), func(ctx InCtx) traversal.CoreBounce {
		seenURI = ctx.URI()
		return traversal.ReflectedBounce(wave.OKCore(wave.Empty()))
	})

	w := wave.NewDirected(wave.KindPing, surface("alice"), wave.ToSingle(surface("bob")),
		wave.DirectedCore{Method: wave.Http("POST"), URI: "/widgets/42"})

	bounce := r.Handle(w)
	if bounce.Kind != traversal.Reflected || !bounce.Core.OK() {
		t.Fatalf("unexpected bounce %+v", bounce)
	}
	if seenURI != "/widgets/42" {
		t.Fatalf("seenURI = %q, want /widgets/42", seenURI)
	}
}
