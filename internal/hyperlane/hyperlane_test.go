package hyperlane

import (
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"os"
	"testing"
	"time"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/wave"
)

type pipeRWC struct {
	r io.Reader
	w io.Writer
}

func (p pipeRWC) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p pipeRWC) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p pipeRWC) Close() error                { return nil }

// bufferedPipe returns two connected ends backed by OS pipes. Handshake
// writes its first frame before reading on both sides, so the transport
// must buffer writes the way a TCP socket does; a synchronous io.Pipe
// would leave both writers blocked.
func bufferedPipe(t *testing.T) (pipeRWC, pipeRWC) {
	t.Helper()
	ar, aw, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	br, bw, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		ar.Close()
		aw.Close()
		br.Close()
		bw.Close()
	})
	return pipeRWC{r: br, w: aw}, pipeRWC{r: ar, w: bw}
}

func keypair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	return pub, priv
}

func TestHandshakeSucceedsWithMatchingVersionAndValidSignature(t *testing.T) {
	aConn, bConn := bufferedPipe(t)

	aPub, aPriv := keypair(t)
	bPub, bPriv := keypair(t)
	aKey := point.StarKey{Constellation: "sun", Name: "alpha", Index: 0}
	bKey := point.StarKey{Constellation: "sun", Name: "beta", Index: 0}

	type result struct {
		conn *Conn
		err  error
	}
	aResult := make(chan result, 1)
	bResult := make(chan result, 1)

	go func() {
		c, err := Handshake(aConn, aKey, func(m []byte) []byte { return ed25519.Sign(aPriv, m) }, aPub)
		aResult <- result{c, err}
	}()
	go func() {
		c, err := Handshake(bConn, bKey, func(m []byte) []byte { return ed25519.Sign(bPriv, m) }, bPub)
		bResult <- result{c, err}
	}()

	timeout := time.After(2 * time.Second)
	var ra, rb result
	for i := 0; i < 2; i++ {
		select {
		case ra = <-aResult:
		case rb = <-bResult:
		case <-timeout:
			t.Fatal("handshake did not complete in time")
		}
	}
	if ra.err != nil {
		t.Fatalf("side A handshake error: %v", ra.err)
	}
	if rb.err != nil {
		t.Fatalf("side B handshake error: %v", rb.err)
	}
	if !ra.conn.PeerStarKey.Equal(bKey) {
		t.Fatalf("side A saw peer key %v, want %v", ra.conn.PeerStarKey, bKey)
	}
	if !rb.conn.PeerStarKey.Equal(aKey) {
		t.Fatalf("side B saw peer key %v, want %v", rb.conn.PeerStarKey, aKey)
	}
}

func TestHandshakeRejectsForgedSignature(t *testing.T) {
	aConn, bConn := bufferedPipe(t)

	aPub, _ := keypair(t)
	_, forgedPriv := keypair(t) // different keypair than aPub: signature won't verify
	bPub, bPriv := keypair(t)

	aKey := point.StarKey{Constellation: "sun", Name: "alpha", Index: 0}
	bKey := point.StarKey{Constellation: "sun", Name: "beta", Index: 0}

	bResult := make(chan error, 1)
	go func() {
		_, err := Handshake(bConn, bKey, func(m []byte) []byte { return ed25519.Sign(bPriv, m) }, bPub)
		bResult <- err
	}()

	go Handshake(aConn, aKey, func(m []byte) []byte { return ed25519.Sign(forgedPriv, m) }, aPub)

	select {
	case err := <-bResult:
		if err == nil {
			t.Fatal("expected side B to reject side A's forged ReportStarKey signature")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("side B's handshake did not complete in time")
	}
}

func surface(name string, route point.Route) point.Surface {
	p := point.Point{Route: route, Segments: []point.Segment{{Kind: point.SegBase, Value: name}}}
	return point.AtCore(p)
}

func TestWrapUnwrapTransportRoundTrip(t *testing.T) {
	starA := point.StarKey{Constellation: "sun", Name: "a", Index: 0}
	starD := point.StarKey{Constellation: "sun", Name: "d", Index: 0}
	from := surface("alice", point.StarRoute(starA))
	to := surface("bob", point.StarRoute(starD))

	inner := wave.NewDirected(wave.KindPing, from, wave.ToSingle(to), wave.DirectedCore{Method: wave.Hyp(wave.HypBounce)})

	transportTo := point.AtCore(starD.StarPoint())
	transport := WrapInTransport(inner, point.AtCore(starA.StarPoint()), transportTo)

	got, err := UnwrapFromTransport(transport, transportTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.ID.Equal(inner.ID) {
		t.Fatalf("unwrapped wave id = %v, want %v", got.ID, inner.ID)
	}
}

func TestUnwrapFromTransportRejectsWrongDestination(t *testing.T) {
	starA := point.StarKey{Constellation: "sun", Name: "a", Index: 0}
	starD := point.StarKey{Constellation: "sun", Name: "d", Index: 0}
	starX := point.StarKey{Constellation: "sun", Name: "x", Index: 0}

	inner := wave.NewDirected(wave.KindSignal, surface("alice", point.LocalRoute()), wave.ToSingle(surface("bob", point.LocalRoute())), wave.DirectedCore{})
	transport := WrapInTransport(inner, point.AtCore(starA.StarPoint()), point.AtCore(starD.StarPoint()))

	if _, err := UnwrapFromTransport(transport, point.AtCore(starX.StarPoint())); err == nil {
		t.Fatal("expected error unwrapping at the wrong star")
	}
}

func TestWrapUnwrapHopRoundTrip(t *testing.T) {
	starA := point.StarKey{Constellation: "sun", Name: "a", Index: 0}
	starB := point.StarKey{Constellation: "sun", Name: "b", Index: 0}
	starD := point.StarKey{Constellation: "sun", Name: "d", Index: 0}

	inner := wave.NewDirected(wave.KindSignal, point.AtCore(starA.StarPoint()), wave.ToSingle(point.AtCore(starD.StarPoint())), wave.DirectedCore{})
	transport := WrapInTransport(inner, point.AtCore(starA.StarPoint()), point.AtCore(starD.StarPoint()))
	hop := WrapInHop(transport, point.AtCore(starA.StarPoint()), point.AtCore(starB.StarPoint()))

	got, err := UnwrapFromHop(hop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Core.Method.IsHyp(wave.HypTransport) {
		t.Fatal("unwrapped hop should yield the transport signal")
	}
}

func TestFrameJSONRoundTrip(t *testing.T) {
	key := point.StarKey{Constellation: "sun", Name: "a", Index: 0}
	f := ReportStarKeyFrame(key, func(m []byte) []byte { return []byte("sig") }, []byte("pub"))
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ReportStarKey == nil || !got.ReportStarKey.Equal(key) {
		t.Fatalf("round-tripped star key = %v, want %v", got.ReportStarKey, key)
	}
}

func connectedPair(t *testing.T, aKey, bKey point.StarKey) (*Conn, *Conn) {
	t.Helper()
	aConn, bConn := bufferedPipe(t)

	aPub, aPriv := keypair(t)
	bPub, bPriv := keypair(t)

	type result struct {
		conn *Conn
		err  error
	}
	aCh := make(chan result, 1)
	bCh := make(chan result, 1)
	go func() {
		c, err := Handshake(aConn, aKey, func(m []byte) []byte { return ed25519.Sign(aPriv, m) }, aPub)
		aCh <- result{c, err}
	}()
	go func() {
		c, err := Handshake(bConn, bKey, func(m []byte) []byte { return ed25519.Sign(bPriv, m) }, bPub)
		bCh <- result{c, err}
	}()
	ra := <-aCh
	rb := <-bCh
	if ra.err != nil || rb.err != nil {
		t.Fatalf("handshake errors: a=%v b=%v", ra.err, rb.err)
	}
	return ra.conn, rb.conn
}

func TestRouterForwardsToAdjacentAndIncrementsHops(t *testing.T) {
	aKey := point.StarKey{Constellation: "sun", Name: "a", Index: 0}
	bKey := point.StarKey{Constellation: "sun", Name: "b", Index: 0}
	aSide, bSide := connectedPair(t, aKey, bKey)

	// router plays star B's routing table: its live connection's peer is A.
	router := NewRouter(bKey)
	router.AddPeer(bSide)

	w := wave.NewDirected(wave.KindSignal, point.AtCore(bKey.StarPoint()), wave.ToSingle(point.AtCore(aKey.StarPoint())), wave.DirectedCore{Method: wave.Hyp(wave.HypHop)})
	w.To = wave.ToSingle(surface("a", point.StarRoute(aKey)))

	if err := router.Route(w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frame, err := aSide.Recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if frame.Kind != FrameStarMessage || frame.Wave == nil {
		t.Fatal("expected a StarMessage frame")
	}
	if frame.Wave.Hops != 1 {
		t.Fatalf("hops = %d, want 1", frame.Wave.Hops)
	}
}

func TestRouterForwardsNonAdjacentViaHopWrap(t *testing.T) {
	aKey := point.StarKey{Constellation: "sun", Name: "a", Index: 0}
	bKey := point.StarKey{Constellation: "sun", Name: "b", Index: 0}
	cKey := point.StarKey{Constellation: "sun", Name: "c", Index: 0}

	// router plays star A's routing table: its only live connection is to B,
	// but the wave is addressed to C, two hops away.
	aSide, bSide := connectedPair(t, aKey, bKey)
	router := NewRouter(aKey)
	router.AddPeer(aSide)

	w := wave.NewDirected(wave.KindSignal, point.AtCore(aKey.StarPoint()), wave.ToSingle(point.AtCore(cKey.StarPoint())), wave.DirectedCore{Method: wave.Hyp(wave.HypBounce)})

	if err := router.Route(w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frame, err := bSide.Recv()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if frame.Kind != FrameStarMessage || frame.Wave == nil {
		t.Fatal("expected a StarMessage frame")
	}
	hop := *frame.Wave
	if !hop.Core.Method.IsHyp(wave.HypHop) {
		t.Fatalf("expected B to receive a Hyp<Hop> signal, got method %v", hop.Core.Method)
	}
	if hop.Hops != 1 {
		t.Fatalf("hops = %d, want 1", hop.Hops)
	}

	transport, err := UnwrapFromHop(hop)
	if err != nil {
		t.Fatalf("unwrap hop: %v", err)
	}
	if !transport.Core.Method.IsHyp(wave.HypTransport) {
		t.Fatal("expected the carried signal to be Hyp<Transport>")
	}
	cSurface := point.AtCore(cKey.StarPoint())
	if !transport.To.Matches(cSurface) {
		t.Fatalf("transport addressed to %v, want star c", transport.To)
	}
	inner, err := UnwrapFromTransport(transport, cSurface)
	if err != nil {
		t.Fatalf("unwrap transport: %v", err)
	}
	if !inner.ID.Equal(w.ID) {
		t.Fatalf("inner wave id = %v, want %v", inner.ID, w.ID)
	}
}

func TestRouterForwardSkipsAlreadyVisitedAdjacents(t *testing.T) {
	aKey := point.StarKey{Constellation: "sun", Name: "a", Index: 0}
	bKey := point.StarKey{Constellation: "sun", Name: "b", Index: 0}
	cKey := point.StarKey{Constellation: "sun", Name: "c", Index: 0}
	targetKey := point.StarKey{Constellation: "sun", Name: "z", Index: 0}

	aToB, bFromA := connectedPair(t, aKey, bKey)
	aToC, cFromA := connectedPair(t, aKey, cKey)

	router := NewRouter(aKey)
	router.AddPeer(aToB)
	router.AddPeer(aToC)

	w := wave.NewDirected(wave.KindSignal, point.AtCore(aKey.StarPoint()), wave.ToSingle(point.AtCore(targetKey.StarPoint())), wave.DirectedCore{})
	w.History = map[string]struct{}{bKey.String(): {}}

	if err := router.Route(w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cCh := make(chan Frame, 1)
	go func() {
		f, err := cFromA.Recv()
		if err == nil {
			cCh <- f
		}
	}()
	select {
	case f := <-cCh:
		if f.Wave == nil || !f.Wave.Core.Method.IsHyp(wave.HypHop) {
			t.Fatal("expected C to receive the forwarded Hyp<Hop> signal")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("C did not receive the forwarded hop in time")
	}

	bCh := make(chan Frame, 1)
	go func() {
		f, err := bFromA.Recv()
		if err == nil {
			bCh <- f
		}
	}()
	select {
	case <-bCh:
		t.Fatal("B was already in the wave's history and should not have been re-forwarded to")
	case <-time.After(200 * time.Millisecond):
		// expected: B receives nothing.
	}
}

func TestRouterDropsWaveExceedingMaxHops(t *testing.T) {
	router := NewRouter(point.StarKey{Constellation: "sun", Name: "z", Index: 0})
	w := wave.NewDirected(wave.KindSignal, point.Surface{}, wave.ToSingle(point.Surface{}), wave.DirectedCore{})
	w.Hops = wave.MaxHops
	if err := router.Route(w); err == nil {
		t.Fatal("expected an error once hops exceeds MaxHops")
	}
}
