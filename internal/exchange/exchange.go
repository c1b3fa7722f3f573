// Package exchange implements the exchanger (spec.md §4.2): the
// correlator that pairs reflected waves to the directed wave they answer.
// A reflection slot is opened before a directed wave is routed and removed
// on completion, timeout, or lazy reaping after its caller drops interest.
package exchange

import (
	"sync"
	"time"

	"github.com/starlane-io/starlane/internal/metrics"
	"github.com/starlane-io/starlane/internal/wave"
)

// Aggregate is the set of reflected waves a completed exchange produced.
// Single and a 1-reflection Count/Timer both yield a 1-element Aggregate;
// callers that only want the first/only reflection use Aggregate.First().
type Aggregate []wave.Wave

// First returns the first reflection in the aggregate, and false if it's
// empty.
func (a Aggregate) First() (wave.Wave, bool) {
	if len(a) == 0 {
		return wave.Wave{}, false
	}
	return a[0], true
}

// slot is one outstanding reflection-correlation entry.
type slot struct {
	bounce   wave.BounceBacks
	ch       chan wave.Wave // buffered to bounce's expected count (or 32 for Timer, per spec.md resource caps)
	dropped  chan struct{} // closed by cancel(); wait() treats this as "caller gone"
	dropOnce sync.Once
	deadline time.Time
	original wave.Wave
}

func (s *slot) drop() {
	s.dropOnce.Do(func() { close(s.dropped) })
}

// Exchanger owns all pending reflection slots for one star. It is safe for
// concurrent use.
type Exchanger struct {
	mu    sync.Mutex
	slots map[string]*slot // keyed by WaveId.String()

	now func() time.Time // injectable clock for testing
}

// timerBufferCap bounds a Timer-policy slot's reflection buffer, per
// spec.md §5's resource caps ("Exchanger uses per-aggregate buffers sized
// to n (Count) or 32 (Timer)").
const timerBufferCap = 32

// New builds an Exchanger.
func New() *Exchanger {
	return &Exchanger{
		slots: make(map[string]*slot),
		now:   time.Now,
	}
}

// Open installs a reflection slot for a directed wave about to be routed.
// It returns a channel that receives the completed Aggregate at most
// once, and a cancel function. Calling cancel (equivalent to dropping the
// oneshot receiver in the original design) removes the slot lazily: the
// background wait stops, the channel is closed without a value, and no
// further reflections for this wave are accepted. The caller must either read from the returned channel until
// it closes, or call cancel — never neither.
func (e *Exchanger) Open(w wave.Wave) (result <-chan Aggregate, cancel func()) {
	capHint := 1
	switch w.Bounce.Kind {
	case wave.BounceCount:
		capHint = w.Bounce.Count
		if capHint < 0 {
			capHint = 0
		}
	case wave.BounceTimer:
		capHint = timerBufferCap
	}

	out := make(chan Aggregate, 1)

	metrics.ExchangesOpened.Inc()

	switch w.Bounce.Kind {
	case wave.BounceNone:
		metrics.ExchangesCompleted.WithLabelValues("immediate").Inc()
		out <- Aggregate{}
		close(out)
		return out, func() {}
	case wave.BounceCount:
		if w.Bounce.Count == 0 {
			metrics.ExchangesCompleted.WithLabelValues("immediate").Inc()
			out <- Aggregate{}
			close(out)
			return out, func() {}
		}
	}

	s := &slot{
		bounce:   w.Bounce,
		ch:       make(chan wave.Wave, capHint),
		dropped:  make(chan struct{}),
		original: w,
	}
	if w.Bounce.Kind == wave.BounceTimer {
		s.deadline = e.now().Add(w.Bounce.Timer)
	} else {
		s.deadline = e.now().Add(w.Handling.Wait.Duration())
	}

	key := w.ID.String()
	e.mu.Lock()
	e.slots[key] = s
	e.mu.Unlock()
	metrics.ExchangesPending.Set(float64(e.Pending()))

	go e.wait(key, s, out)

	return out, s.drop
}

// wait blocks until s completes (by count, by timer, or by the caller
// dropping interest), removes the slot, and delivers the aggregate.
func (e *Exchanger) wait(key string, s *slot, out chan<- Aggregate) {
	timer := time.NewTimer(time.Until(s.deadline))
	defer timer.Stop()

	var received Aggregate
	for {
		select {
		case r := <-s.ch:
			received = append(received, r)
			if e.satisfied(s, received) {
				e.remove(key)
				metrics.ExchangesCompleted.WithLabelValues("satisfied").Inc()
				out <- received
				close(out)
				return
			}
		case <-timer.C:
			e.remove(key)
			if s.bounce.Kind == wave.BounceTimer {
				metrics.ExchangesCompleted.WithLabelValues("timer").Inc()
				out <- received
			} else {
				// Single/Count timeout: synthesize a 408 reflection.
				metrics.ExchangesCompleted.WithLabelValues("timeout").Inc()
				out <- append(received, s.original.Timeout())
			}
			close(out)
			return
		case <-s.dropped:
			e.remove(key)
			metrics.ExchangesCompleted.WithLabelValues("dropped").Inc()
			close(out)
			return
		}
	}
}

func (e *Exchanger) satisfied(s *slot, received Aggregate) bool {
	switch s.bounce.Kind {
	case wave.BounceSingle:
		return len(received) >= 1
	case wave.BounceCount:
		return len(received) >= s.bounce.Count
	default:
		return false
	}
}

func (e *Exchanger) remove(key string) {
	e.mu.Lock()
	delete(e.slots, key)
	e.mu.Unlock()
	metrics.ExchangesPending.Set(float64(e.Pending()))
}

// Deliver routes an arriving reflected wave to the slot correlated by its
// ReflectionOf id. It reports false if no slot is open for that id (an
// arrival with no slot is an error, per spec.md §4.2's contract; the
// caller should log it as "unexpected reflection") or if the slot's
// buffer is already full (a late reflection past the bounce policy's
// expected count — logged, but must not disturb an already-completed
// aggregate).
func (e *Exchanger) Deliver(r wave.Wave) bool {
	key := r.ReflectionOf.String()
	e.mu.Lock()
	s, ok := e.slots[key]
	e.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case s.ch <- r:
		return true
	default:
		return false
	}
}

// Pending reports how many reflection slots are currently open.
func (e *Exchanger) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.slots)
}
