package catalog

import (
	"testing"

	"github.com/starlane-io/starlane/internal/point"
)

func TestHostsKnownKind(t *testing.T) {
	host, ok := Hosts(point.Kind{Discriminant: point.KindApp})
	if !ok {
		t.Fatal("expected App to be cataloged")
	}
	if host != point.StarNexus {
		t.Fatalf("App host = %v, want Nexus", host)
	}
}

func TestHostsUnknownKind(t *testing.T) {
	if _, ok := Hosts(point.Kind{Discriminant: "Bogus"}); ok {
		t.Fatal("expected unknown discriminant to be uncataloged")
	}
}

func TestRegistryDefaultsToCentral(t *testing.T) {
	for _, e := range Catalog {
		if e.Registry != point.StarCentral {
			t.Fatalf("%s: expected Central registrar, got %v", e.Discriminant, e.Registry)
		}
	}
}
