// Package catalog is Starlane's "kind phonebook": a static lookup from a
// particle Discriminant to its conventional home star kind (StarKind::hosts)
// and conventional registrar (StarKind::registry), per spec.md §3.
//
// The home/registrar assignment isn't pinned by the spec beyond "each kind
// has a conventional home star kind" — this table is this implementation's
// concrete answer (see DESIGN.md, Open Question: per-kind home/registrar
// map), modeled on the teacher's flat "friendly name → metadata" catalog.
package catalog

import "github.com/starlane-io/starlane/internal/point"

// Entry describes the conventional placement for one Kind discriminant.
type Entry struct {
	Discriminant point.Discriminant
	Hosts        point.StarSub // which star kind conventionally hosts this kind
	Registry     point.StarSub // which star kind conventionally registers it
}

// Catalog is the built-in kind → placement table.
var Catalog = []Entry{
	{Discriminant: point.KindRoot, Hosts: point.StarCentral, Registry: point.StarCentral},
	{Discriminant: point.KindSpace, Hosts: point.StarCentral, Registry: point.StarCentral},
	{Discriminant: point.KindBase, Hosts: point.StarSuper, Registry: point.StarCentral},
	{Discriminant: point.KindUser, Hosts: point.StarCentral, Registry: point.StarCentral},
	{Discriminant: point.KindUserBase, Hosts: point.StarCentral, Registry: point.StarCentral},
	{Discriminant: point.KindApp, Hosts: point.StarNexus, Registry: point.StarCentral},
	{Discriminant: point.KindMechtron, Hosts: point.StarMaelstrom, Registry: point.StarCentral},
	{Discriminant: point.KindFileSystem, Hosts: point.StarScribe, Registry: point.StarCentral},
	{Discriminant: point.KindFile, Hosts: point.StarScribe, Registry: point.StarCentral},
	{Discriminant: point.KindArtifact, Hosts: point.StarScribe, Registry: point.StarCentral},
	{Discriminant: point.KindControl, Hosts: point.StarJump, Registry: point.StarCentral},
	{Discriminant: point.KindPortal, Hosts: point.StarJump, Registry: point.StarCentral},
	{Discriminant: point.KindStar, Hosts: point.StarMachine, Registry: point.StarCentral},
	{Discriminant: point.KindGlobal, Hosts: point.StarCentral, Registry: point.StarCentral},
}

// Lookup finds the catalog entry for a discriminant. Returns nil if the
// discriminant is unknown (e.g. a future kind not yet cataloged).
func Lookup(d point.Discriminant) *Entry {
	for i := range Catalog {
		if Catalog[i].Discriminant == d {
			return &Catalog[i]
		}
	}
	return nil
}

// Hosts returns the conventional home star kind for k, and false if k is
// not cataloged.
func Hosts(k point.Kind) (point.StarSub, bool) {
	e := Lookup(k.Discriminant)
	if e == nil {
		return "", false
	}
	return e.Hosts, true
}

// Registry returns the conventional registrar star kind for k, and false
// if k is not cataloged.
func Registry(k point.Kind) (point.StarSub, bool) {
	e := Lookup(k.Discriminant)
	if e == nil {
		return "", false
	}
	return e.Registry, true
}

// IsForwarder reports whether a star kind relays search ripples to its
// adjacents rather than just answering for itself. Fold is the only
// StarSub absent from Catalog's Hosts column: it hosts no particle kind
// of its own, existing purely to relay traffic between regions of a
// constellation, which makes it this implementation's forwarder kind
// (see DESIGN.md, Open Question: forwarder-kind star).
func IsForwarder(k point.StarSub) bool {
	return k == point.StarFold
}
