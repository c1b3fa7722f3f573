// Package point implements Starlane's hierarchical particle identifier —
// the Point — along with the Surface, StarKey, and Kind types that sit on
// top of it. Points form a tree; textual points look like
// "space:app:users:alice" with an optional route prefix such as
// "<<constellation:sun[0]>>::star".
package point

import (
	"fmt"
	"strings"
)

// RouteKind selects how a Point is addressed relative to the local star.
type RouteKind int

const (
	RouteLocal RouteKind = iota
	RouteRemote
	RouteStar
	RouteHyperlane
)

func (k RouteKind) String() string {
	switch k {
	case RouteLocal:
		return "Local"
	case RouteRemote:
		return "Remote"
	case RouteStar:
		return "Star"
	case RouteHyperlane:
		return "Hyperlane"
	default:
		return "Unknown"
	}
}

// Route identifies which star (or none) a Point's textual address is
// anchored to.
type Route struct {
	Kind      RouteKind
	Star      *StarKey // set when Kind == RouteStar
	Hyperlane string   // set when Kind == RouteHyperlane
}

// LocalRoute is the zero-value "no route prefix" route.
func LocalRoute() Route { return Route{Kind: RouteLocal} }

// StarRoute anchors a Point's address to a specific star.
func StarRoute(key StarKey) Route { return Route{Kind: RouteStar, Star: &key} }

func (r Route) String() string {
	switch r.Kind {
	case RouteLocal:
		return ""
	case RouteRemote:
		return "REMOTE::"
	case RouteStar:
		return fmt.Sprintf("<<%s>>::", r.Star.String())
	case RouteHyperlane:
		return fmt.Sprintf("[%s]::", r.Hyperlane)
	default:
		return ""
	}
}

// SegmentKind tags a single Point segment.
type SegmentKind int

const (
	SegSpace SegmentKind = iota
	SegBase
	SegFile
	SegVersion
	SegPop
	SegRoot
	SegFsRoot
)

func (k SegmentKind) String() string {
	switch k {
	case SegSpace:
		return "Space"
	case SegBase:
		return "Base"
	case SegFile:
		return "File"
	case SegVersion:
		return "Version"
	case SegPop:
		return "Pop"
	case SegRoot:
		return "Root"
	case SegFsRoot:
		return "FsRoot"
	default:
		return "Unknown"
	}
}

// Segment is one node in a Point's hierarchy.
type Segment struct {
	Kind  SegmentKind
	Value string
}

func (s Segment) render() string {
	switch s.Kind {
	case SegFsRoot:
		return ":/"
	case SegFile:
		return "/" + s.Value
	case SegVersion:
		return ":version:" + s.Value
	case SegPop:
		return "(" + s.Value + ")"
	default:
		return s.Value
	}
}

// Point is Starlane's hierarchical particle identifier.
type Point struct {
	Route    Route
	Segments []Segment
}

// Validate checks the segment-ordering invariant: a filesystem root
// (SegFsRoot, rendered ":/") may appear at most once, and only before any
// File segments.
func (p Point) Validate() error {
	seenFsRoot := false
	seenFile := false
	for i, s := range p.Segments {
		switch s.Kind {
		case SegFsRoot:
			if seenFsRoot {
				return fmt.Errorf("point: filesystem root may appear at most once (segment %d)", i)
			}
			if seenFile {
				return fmt.Errorf("point: filesystem root must precede File segments (segment %d)", i)
			}
			seenFsRoot = true
		case SegFile:
			seenFile = true
		}
	}
	return nil
}

// String renders the Point in its textual form.
func (p Point) String() string {
	var b strings.Builder
	b.WriteString(p.Route.String())
	for i, s := range p.Segments {
		if i > 0 && s.Kind != SegFile && s.Kind != SegFsRoot && s.Kind != SegVersion && s.Kind != SegPop {
			b.WriteString(":")
		}
		b.WriteString(s.render())
	}
	return b.String()
}

// Parent returns the Point one level up, and false if p has no parent
// (p is already a root-level single-segment point).
func (p Point) Parent() (Point, bool) {
	if len(p.Segments) <= 1 {
		return Point{}, false
	}
	parent := Point{Route: p.Route, Segments: append([]Segment(nil), p.Segments[:len(p.Segments)-1]...)}
	return parent, true
}

// LastSegment returns the final segment, and false if the point is empty.
func (p Point) LastSegment() (Segment, bool) {
	if len(p.Segments) == 0 {
		return Segment{}, false
	}
	return p.Segments[len(p.Segments)-1], true
}

// Push returns a new child Point with the given segment appended.
func (p Point) Push(s Segment) Point {
	segs := append(append([]Segment(nil), p.Segments...), s)
	return Point{Route: p.Route, Segments: segs}
}

// WithRoute returns a copy of p addressed via route.
func (p Point) WithRoute(r Route) Point {
	return Point{Route: r, Segments: p.Segments}
}

// Equal reports whether two points have the same route and segments.
func (p Point) Equal(o Point) bool {
	return p.String() == o.String()
}

// ─── Well-known points ──────────────────────────────────────────────────────

// Root is the single root of the particle tree.
func Root() Point {
	return Point{Segments: []Segment{{Kind: SegSpace, Value: "ROOT"}}}
}

// Central is the well-known point of the Central star's own Star particle.
func Central() Point {
	return Point{Segments: []Segment{{Kind: SegBase, Value: "central"}}}
}

// GlobalExecutor is the well-known Global particle created alongside Root.
func GlobalExecutor() Point {
	return Point{Segments: []Segment{{Kind: SegSpace, Value: "GLOBAL"}, {Kind: SegBase, Value: "executor"}}}
}

// LocalEndpoint is the well-known point a star uses to address itself from
// within its own process (e.g. for locally-originated waves before a
// StarKey has been assigned).
func LocalEndpoint() Point {
	return Point{Segments: []Segment{{Kind: SegBase, Value: "LOCAL"}}}
}
