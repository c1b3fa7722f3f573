// Package registry defines the contract the star driver consumes for the
// authoritative mapping of point to kind, location, properties, status,
// and access (spec.md §4.9). This package is the interface only; package
// registry/sqlstore provides a concrete SQL-backed implementation.
package registry

import (
	"errors"

	"github.com/starlane-io/starlane/internal/point"
)

// Sentinel errors a Registry implementation returns; callers at the star
// boundary map these to SpaceErr status codes (spec.md §7: "Registry Dupe
// maps to 409 when strategy != Ensure").
var (
	ErrDupe     = errors.New("registry: point already exists")
	ErrNotFound = errors.New("registry: point not found")
	ErrLocked   = errors.New("registry: property is locked")
)

// Status is a particle's lifecycle state.
type Status int

const (
	// Pending is the status a particle has immediately after Register,
	// before its star/host assignment and provisioning complete.
	Pending Status = iota
	Ready
	Paused
	Done
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Ready:
		return "Ready"
	case Paused:
		return "Paused"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// Property is one entry of a particle's property map. A locked property
// rejects SetProperties overwrites until explicitly unlocked.
type Property struct {
	Value  string
	Locked bool
}

// ParticleStub is the lightweight identity of a registered particle:
// point, kind, and current status.
type ParticleStub struct {
	Point  point.Point
	Kind   point.Kind
	Status Status
	Owner  string
}

// Location records where a particle's Core has been provisioned: which
// star hosts it and, for particles that live inside a star's own
// process, which host particle.
type Location struct {
	Star *point.Point
	Host *point.Point
}

// ParticleRecord is the full registry-owned record for a point: its stub
// joined with its location and property map.
type ParticleRecord struct {
	Stub       ParticleStub
	Location   Location
	Properties map[string]Property
}

// RegisterStrategy controls Register's behavior on a (parent, last
// segment) collision.
type RegisterStrategy int

const (
	// Create fails with Dupe if the point already exists.
	Create RegisterStrategy = iota
	// Ensure succeeds silently if the point already exists, leaving the
	// existing record untouched.
	Ensure
)

// Registration is the input to Register.
type Registration struct {
	Point      point.Point
	Kind       point.Kind
	Owner      string
	Strategy   RegisterStrategy
	Properties map[string]Property
}

// Select hierarchically matches particles at or under Pattern. Kind, if
// non-nil, additionally filters by particle kind. Recursive controls
// whether descendants at any depth match or only direct children.
type Select struct {
	Pattern   point.Point
	Kind      *point.Selector
	Recursive bool
}

// SubSelect is the internal recursive helper Select is built on: match
// children of Parent (and, if Recursive, their descendants) against Kind.
type SubSelect struct {
	Parent    point.Point
	Kind      *point.Selector
	Recursive bool
}

// PointHierarchy is the root-to-point kind path produced by
// QueryPointHierarchy: Kinds[0] is Point's own root ancestor's kind,
// Kinds[len-1] is Point's own kind.
type PointHierarchy struct {
	Point point.Point
	Kinds []point.Kind
}

// Delete selects the same set Select would and removes it.
type Delete struct {
	Pattern   point.Point
	Kind      *point.Selector
	Recursive bool
}

// Registry is the contract the star driver consumes (spec.md §4.9). All
// operations are expected to be internally serialized by the concrete
// implementation; callers never need their own external lock.
type Registry interface {
	Register(reg Registration) error
	AssignStar(p point.Point, star point.Point) error
	AssignHost(p point.Point, host point.Point) error
	SetStatus(p point.Point, status Status) error
	SetProperties(p point.Point, props map[string]Property) error
	Sequence(p point.Point) (int64, error)
	Record(p point.Point) (ParticleRecord, error)
	GetProperties(p point.Point) (map[string]Property, error)
	Select(sel Select) ([]ParticleStub, error)
	SubSelect(sel SubSelect) ([]point.Point, error)
	QueryPointHierarchy(p point.Point) (PointHierarchy, error)
	Delete(del Delete) ([]point.Point, error)

	Grant(grant AccessGrant) error
	RemoveAccess(id string, to string) error
	Access(to string, on point.Point) (Access, error)
	Chown(p point.Point, newOwner string) error
	ListAccess(on point.Point) ([]AccessGrant, error)
}
