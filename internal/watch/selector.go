// Package watch implements the per-star watch bus (spec.md §4.10): a
// local map from WatchSelector to the set of senders listening on it,
// fanning a fired notification out to every matching local listener and,
// for a topic this star is not authoritative for, proxying the
// subscription upstream over a hyperlane Watch/UnWatch/Notify frame.
package watch

import "github.com/starlane-io/starlane/internal/point"

// TopicKind tags WatchSelector's Topic union: a single particle's point,
// or a star as a whole (e.g. "notify me of this star's health changes").
type TopicKind int

const (
	TopicPoint TopicKind = iota
	TopicStar
)

// Topic is the (Point|Star) union a WatchSelector names.
type Topic struct {
	Kind TopicKind
	Point point.Point
	Star  point.StarKey
}

// PointTopic builds a Topic addressing a single particle.
func PointTopic(p point.Point) Topic { return Topic{Kind: TopicPoint, Point: p} }

// StarTopic builds a Topic addressing a star as a whole.
func StarTopic(k point.StarKey) Topic { return Topic{Kind: TopicStar, Star: k} }

// Key renders the topic to the opaque string used both as the local map
// key and as the wire-frame WatchTopic field — proxied subscriptions
// never need to parse it back into a structured Topic, only compare it.
func (t Topic) Key() string {
	switch t.Kind {
	case TopicPoint:
		return "Point:" + t.Point.String()
	case TopicStar:
		return "Star:" + t.Star.String()
	default:
		return "Unknown:"
	}
}

// WatchSelector names what a Watcher listens for: a topic and, within
// it, a single property name (empty meaning "the topic itself").
type WatchSelector struct {
	Topic    Topic
	Property string
}

// Key renders the selector to the string used to index the bus's sender
// map and the wire frame's (WatchTopic, WatchProperty) pair.
func (s WatchSelector) Key() string { return s.Topic.Key() + "|" + s.Property }
