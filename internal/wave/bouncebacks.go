package wave

import "time"

// BounceBacksKind tags the BounceBacks tagged union.
type BounceBacksKind int

const (
	// BounceNone: no reflection is expected at all (Signal, or a Ripple
	// the sender doesn't care to wait on).
	BounceNone BounceBacksKind = iota
	// BounceSingle: exactly one reflection completes the exchange (Ping).
	BounceSingle
	// BounceCount: the exchange completes after N reflections arrive, or
	// on timeout, whichever is first.
	BounceCount
	// BounceTimer: the exchange stays open, accumulating reflections,
	// until the timer elapses.
	BounceTimer
)

// BounceBacks selects how many reflections an exchanger slot waits for
// before completing.
type BounceBacks struct {
	Kind  BounceBacksKind
	Count int           // set when Kind == BounceCount
	Timer time.Duration // set when Kind == BounceTimer
}

// NoBounce is the zero-reflection policy.
func NoBounce() BounceBacks { return BounceBacks{Kind: BounceNone} }

// SingleBounce completes on the first reflection.
func SingleBounce() BounceBacks { return BounceBacks{Kind: BounceSingle} }

// CountBounce completes after n reflections (or 0 reflections if n == 0,
// completing immediately with an empty Multi aggregate).
func CountBounce(n int) BounceBacks { return BounceBacks{Kind: BounceCount, Count: n} }

// TimerBounce accumulates reflections until d elapses.
func TimerBounce(d time.Duration) BounceBacks { return BounceBacks{Kind: BounceTimer, Timer: d} }

func (b BounceBacks) String() string {
	switch b.Kind {
	case BounceNone:
		return "None"
	case BounceSingle:
		return "Single"
	case BounceCount:
		return "Count"
	case BounceTimer:
		return "Timer"
	default:
		return "Unknown"
	}
}

// BounceBacksFor returns the default BounceBacks policy implied by a
// directed wave kind, per the Kind/Direction/Reflection/BounceBacks table:
// Ping → Single, Signal → None. Ripple has no universal default; callers
// must choose explicitly (None, Single, Count(n), or Timer(d)).
func BounceBacksFor(k Kind) (BounceBacks, bool) {
	switch k {
	case KindPing:
		return SingleBounce(), true
	case KindSignal:
		return NoBounce(), true
	default:
		return BounceBacks{}, false
	}
}
