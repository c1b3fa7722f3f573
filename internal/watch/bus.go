package watch

import (
	"sync"

	"github.com/starlane-io/starlane/internal/hyperlane"
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/wave"
)

// notifyBuffer is the per-listener channel capacity. A slow listener
// drops notifications rather than blocking the firing star, mirroring
// the teacher's bounded SSE notify channel with a non-blocking send.
const notifyBuffer = 32

// Notification is one fired event. Key is always set (WatchSelector.Key
// for a locally-originated Fire, or the raw wire (topic, property) pair
// for one relayed in from an upstream Notify frame); Selector is only
// populated when the firer had the structured selector at hand.
type Notification struct {
	Key      string
	Selector WatchSelector
	Body     wave.Substance
}

// PeerSender is the capability Bus needs to reach an adjacent star —
// hyperlane.Router's Peer method, restated locally to avoid a direct
// compile-time dependency on hyperlane.Router's other methods.
type PeerSender interface {
	Peer(key point.StarKey) (*hyperlane.Conn, bool)
}

// AuthorityFunc reports which star is authoritative for a selector's
// topic, and whether that star is this one.
type AuthorityFunc func(WatchSelector) (star point.StarKey, isSelf bool)

// Watcher is a live subscription returned by Bus.Listen.
type Watcher struct {
	bus      *Bus
	selector WatchSelector
	key      uint64
	ch       chan Notification
}

// Notifications returns the channel notifications for this selector
// arrive on.
func (w *Watcher) Notifications() <-chan Notification { return w.ch }

// Close unregisters the watcher. If it was the last local listener for
// this selector and the selector had been proxied from a remote star, an
// UnWatch frame drops the upstream subscription.
func (w *Watcher) Close() { w.bus.remove(w.selector, w.key) }

// Bus is a star's per-process watch table: WatchSelector -> {key ->
// sender}, plus the set of remote peers proxying a Notify subscription
// through this star for each selector.
type Bus struct {
	Self      point.StarKey
	Authority AuthorityFunc
	Peers     PeerSender

	mu        sync.Mutex
	nextKey   uint64
	senders   map[string]map[uint64]chan Notification
	proxied   map[string]bool
	listeners map[string]map[string]point.StarKey // selector key -> peers subscribed to us, keyed by StarKey.String()
}

// NewBus builds an empty watch bus for self, using authority to decide
// which topics are locally authoritative and peers to reach adjacent
// stars for proxied subscriptions.
func NewBus(self point.StarKey, authority AuthorityFunc, peers PeerSender) *Bus {
	return &Bus{
		Self:      self,
		Authority: authority,
		Peers:     peers,
		senders:   make(map[string]map[uint64]chan Notification),
		proxied:   make(map[string]bool),
		listeners: make(map[string]map[string]point.StarKey),
	}
}

// Listen allocates a key and returns a Watcher receiving notifications
// fired for selector. If selector is the first local listener and its
// topic's authoritative star is not self, a Watch frame is sent upstream
// to establish the proxied subscription.
func (b *Bus) Listen(selector WatchSelector) *Watcher {
	selKey := selector.Key()

	b.mu.Lock()
	set, ok := b.senders[selKey]
	if !ok {
		set = make(map[uint64]chan Notification)
		b.senders[selKey] = set
	}
	firstListener := len(set) == 0
	key := b.nextKey
	b.nextKey++
	ch := make(chan Notification, notifyBuffer)
	set[key] = ch

	var upstream point.StarKey
	needWatch := false
	if firstListener && b.Authority != nil {
		star, isSelf := b.Authority(selector)
		if !isSelf {
			b.proxied[selKey] = true
			upstream = star
			needWatch = true
		}
	}
	b.mu.Unlock()

	if needWatch {
		b.sendUpstream(upstream, hyperlane.WatchFrame(selector.Topic.Key(), selector.Property))
	}

	return &Watcher{bus: b, selector: selector, key: key, ch: ch}
}

func (b *Bus) remove(selector WatchSelector, key uint64) {
	selKey := selector.Key()

	b.mu.Lock()
	set, ok := b.senders[selKey]
	if ok {
		if ch, present := set[key]; present {
			delete(set, key)
			close(ch)
		}
	}
	empty := ok && len(set) == 0
	var upstream point.StarKey
	needUnwatch := false
	if empty {
		delete(b.senders, selKey)
		if b.proxied[selKey] {
			delete(b.proxied, selKey)
			if b.Authority != nil {
				star, isSelf := b.Authority(selector)
				if !isSelf {
					upstream = star
					needUnwatch = true
				}
			}
		}
	}
	b.mu.Unlock()

	if needUnwatch {
		b.sendUpstream(upstream, hyperlane.UnwatchFrame(selector.Topic.Key(), selector.Property))
	}
}

// Fire dispatches a notification to every matching local sender and to
// every remote peer currently proxying this selector through this star.
// The caller is the selector's authoritative star.
func (b *Bus) Fire(selector WatchSelector, body wave.Substance) {
	selKey := selector.Key()
	n := Notification{Key: selKey, Selector: selector, Body: body}

	b.mu.Lock()
	var chans []chan Notification
	for _, ch := range b.senders[selKey] {
		chans = append(chans, ch)
	}
	var downstream []point.StarKey
	for _, peer := range b.listeners[selKey] {
		downstream = append(downstream, peer)
	}
	b.mu.Unlock()

	for _, ch := range chans {
		select {
		case ch <- n:
		default:
		}
	}
	for _, peer := range downstream {
		b.sendUpstream(peer, hyperlane.NotifyFrame(selector.Topic.Key(), selector.Property, body))
	}
}

// HandleFrame processes an inbound Watch-kind frame from a peer: Watch
// registers the peer as a downstream listener, UnWatch drops it, and
// Notify fires the carried body to this star's own local listeners for
// the selector (this star was proxying the subscription upstream).
func (b *Bus) HandleFrame(from point.StarKey, f hyperlane.Frame) {
	selKey := f.WatchTopic + "|" + f.WatchProperty

	switch f.WatchOp {
	case hyperlane.WatchListen:
		b.mu.Lock()
		set, ok := b.listeners[selKey]
		if !ok {
			set = make(map[string]point.StarKey)
			b.listeners[selKey] = set
		}
		set[from.String()] = from
		b.mu.Unlock()
	case hyperlane.WatchUnlisten:
		b.mu.Lock()
		if set, ok := b.listeners[selKey]; ok {
			delete(set, from.String())
			if len(set) == 0 {
				delete(b.listeners, selKey)
			}
		}
		b.mu.Unlock()
	case hyperlane.WatchNotify:
		b.mu.Lock()
		var chans []chan Notification
		for _, ch := range b.senders[selKey] {
			chans = append(chans, ch)
		}
		b.mu.Unlock()
		n := Notification{Key: selKey, Body: f.WatchBody}
		for _, ch := range chans {
			select {
			case ch <- n:
			default:
			}
		}
	}
}

func (b *Bus) sendUpstream(star point.StarKey, f hyperlane.Frame) {
	if b.Peers == nil {
		return
	}
	conn, ok := b.Peers.Peer(star)
	if !ok {
		return
	}
	_ = conn.Send(f)
}
