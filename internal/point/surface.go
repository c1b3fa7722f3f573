package point

import "fmt"

// Layer is one of the four ordered traversal layers a wave passes through
// on a star: Gravity (outermost, inter-star boundary) through Core
// (innermost, handler).
type Layer int

const (
	Gravity Layer = iota
	Field
	Shell
	Core
)

func (l Layer) String() string {
	switch l {
	case Gravity:
		return "Gravity"
	case Field:
		return "Field"
	case Shell:
		return "Shell"
	case Core:
		return "Core"
	default:
		return "Unknown"
	}
}

// Next returns the next-innermost layer, and false if l is already Core.
func (l Layer) Next() (Layer, bool) {
	if l == Core {
		return Core, false
	}
	return l + 1, true
}

// Prev returns the next-outermost layer, and false if l is already Gravity.
func (l Layer) Prev() (Layer, bool) {
	if l == Gravity {
		return Gravity, false
	}
	return l - 1, true
}

// Surface is a (point, layer, topic) triple. Waves travel from surface to
// surface; Topic optionally addresses a sub-handler within the particle at
// Point.
type Surface struct {
	Point Point
	Layer Layer
	Topic string
}

// AtCore returns the Core-layer surface for the given point, with no topic.
func AtCore(p Point) Surface { return Surface{Point: p, Layer: Core} }

// WithTopic returns a copy of the surface addressing a specific topic.
func (s Surface) WithTopic(topic string) Surface {
	s.Topic = topic
	return s
}

func (s Surface) String() string {
	if s.Topic == "" {
		return fmt.Sprintf("%s@%s", s.Point.String(), s.Layer.String())
	}
	return fmt.Sprintf("%s@%s+%s", s.Point.String(), s.Layer.String(), s.Topic)
}

// Equal reports whether two surfaces address the same point, layer, and topic.
func (s Surface) Equal(o Surface) bool {
	return s.Point.Equal(o.Point) && s.Layer == o.Layer && s.Topic == o.Topic
}
