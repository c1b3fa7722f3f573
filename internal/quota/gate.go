// Package quota implements the traversal pipeline's Field-layer
// back-pressure check: a token bucket per originating surface, shared by
// every handling priority, that sheds low-priority waves first as load
// rises, the way the teacher's scheduler sheds spot-tier work before
// enterprise and realtime tiers.
package quota

import (
	"sync"
	"time"

	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/wave"
)

// Level indicates how severely a surface is crowding the gate's tiers.
type Level int

const (
	LevelNone   Level = iota // below every tier — nothing is shed
	LevelSoft                // above Soft — PriorityLow is shed
	LevelMedium              // above Medium — only PriorityHigh passes
	LevelHard                // above Hard — everything is shed
)

// String returns a human-readable back-pressure level.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "NONE"
	case LevelSoft:
		return "SOFT"
	case LevelMedium:
		return "MEDIUM"
	case LevelHard:
		return "HARD"
	default:
		return "UNKNOWN"
	}
}

// Config sets each tier's bucket capacity and the rate (tokens/sec) at
// which a drained bucket refills.
type Config struct {
	Soft   int // capacity shared by every priority (default 1_000)
	Medium int // capacity once PriorityLow is shed (default 5_000)
	Hard   int // capacity once only PriorityHigh passes (default 10_000)

	RefillPerSecond float64 // tokens restored per second (default 200)
}

// DefaultConfig mirrors the teacher's scheduler tier depths.
func DefaultConfig() Config {
	return Config{Soft: 1_000, Medium: 5_000, Hard: 10_000, RefillPerSecond: 200}
}

// bucket is a classic token bucket: tokens drain by one per admitted
// wave and refill linearly over elapsed wall-clock time.
type bucket struct {
	tokens float64
	last   time.Time
}

// Gate tracks one token bucket per originating surface and admits or
// sheds a wave based on its handling priority and the surface's current
// drain level.
type Gate struct {
	mu      sync.Mutex
	cfg     Config
	buckets map[string]*bucket
	now     func() time.Time
}

// NewGate builds a Gate with the given tier configuration.
func NewGate(cfg Config) *Gate {
	return &Gate{cfg: cfg, buckets: make(map[string]*bucket), now: time.Now}
}

// Allow reports whether a wave from the given surface, at the given
// handling priority, should be admitted right now. It drains one token
// from the surface's bucket on admission; sheds cost nothing.
func (g *Gate) Allow(from point.Surface, priority wave.Priority) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := g.bucketFor(from.String())
	g.refill(b)

	level := g.levelFor(b.tokens)
	if !admits(level, priority) {
		return false
	}
	if b.tokens > 0 {
		b.tokens--
	}
	return true
}

// Level reports the current back-pressure level for a surface without
// draining a token.
func (g *Gate) Level(from point.Surface) Level {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := g.bucketFor(from.String())
	g.refill(b)
	return g.levelFor(b.tokens)
}

func (g *Gate) bucketFor(key string) *bucket {
	b, ok := g.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(g.cfg.Hard), last: g.now()}
		g.buckets[key] = b
	}
	return b
}

func (g *Gate) refill(b *bucket) {
	now := g.now()
	elapsed := now.Sub(b.last).Seconds()
	if elapsed <= 0 {
		return
	}
	b.last = now
	b.tokens += elapsed * g.cfg.RefillPerSecond
	if max := float64(g.cfg.Hard); b.tokens > max {
		b.tokens = max
	}
}

// levelFor maps tokens drained from a full bucket onto a tier: a full
// bucket is calm, a drained one is under hard back-pressure.
func (g *Gate) levelFor(tokens float64) Level {
	used := float64(g.cfg.Hard) - tokens
	switch {
	case used >= float64(g.cfg.Hard):
		return LevelHard
	case used >= float64(g.cfg.Medium):
		return LevelMedium
	case used >= float64(g.cfg.Soft):
		return LevelSoft
	default:
		return LevelNone
	}
}

// admits reports whether a wave at the given priority clears the given
// back-pressure level.
func admits(level Level, priority wave.Priority) bool {
	switch level {
	case LevelNone:
		return true
	case LevelSoft:
		return priority != wave.PriorityLow
	case LevelMedium:
		return priority == wave.PriorityHigh
	default:
		return false
	}
}
