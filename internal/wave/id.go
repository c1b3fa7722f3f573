// Package wave implements Starlane's wave envelope (spec.md §4, §4.1): the
// typed message that particles exchange, its directed/reflected kinds, the
// substance tagged union carried as body, and the fill/reflection
// contracts the exchanger and transmitter rely on.
package wave

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind tags which of the five wave kinds an envelope is.
type Kind string

const (
	KindPing   Kind = "Ping"
	KindRipple Kind = "Ripple"
	KindSignal Kind = "Signal"
	KindPong   Kind = "Pong"
	KindEcho   Kind = "Echo"
)

// Directed reports whether k is one of the three directed kinds (Ping,
// Ripple, Signal) as opposed to a reflected kind (Pong, Echo).
func (k Kind) Directed() bool {
	return k == KindPing || k == KindRipple || k == KindSignal
}

// ReflectionKind returns the reflected kind produced by a directed wave of
// kind k, and false if k is not directed or has no reflection (Signal is
// absorbed, never reflected).
func (k Kind) ReflectionKind() (Kind, bool) {
	switch k {
	case KindPing:
		return KindPong, true
	case KindRipple:
		return KindEcho, true
	default:
		return "", false
	}
}

// ID uniquely identifies a wave: a kind tag plus a random uuid. Two waves
// never collide on ID by construction; correlating a reflection to its
// directed wave requires only comparing IDs.
type ID struct {
	Kind Kind
	UUID uuid.UUID
}

// NewID mints a fresh ID for a wave of the given kind.
func NewID(kind Kind) ID {
	return ID{Kind: kind, UUID: uuid.New()}
}

// String renders the RFC 4122 form of the id's uuid.
func (id ID) String() string {
	return id.UUID.String()
}

// Short renders the tracing short-form "<Wave<Kind>>::<first-8-of-uuid>".
func (id ID) Short() string {
	s := id.UUID.String()
	if len(s) > 8 {
		s = s[:8]
	}
	return fmt.Sprintf("<Wave<%s>>::%s", id.Kind, s)
}

// Equal reports whether two ids name the same wave.
func (id ID) Equal(o ID) bool {
	return id.Kind == o.Kind && id.UUID == o.UUID
}
