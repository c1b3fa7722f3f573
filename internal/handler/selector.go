// Package handler implements directed-handler dispatch (spec.md §4.6): a
// tagged route table matched by method/URI/body-kind, invoked with an
// InCtx view over the wave being handled, producing the traversal
// package's CoreBounce.
package handler

import (
	"strings"

	"github.com/starlane-io/starlane/internal/wave"
)

// Selector is a route's match criteria: a Method (Kind always required,
// Name empty means "any name in this Kind"), an optional URI prefix, and
// an optional required Substance kind for the body.
type Selector struct {
	MethodKind wave.MethodKind
	MethodName string // empty matches any name within MethodKind

	URIPrefix string // empty matches any URI

	BodyKind        wave.SubstanceKind
	RequireBodyKind bool // false: BodyKind is ignored
}

// HypSelector builds a selector matching a specific Hyp-namespace method.
func HypSelector(m wave.HypMethod) Selector {
	return Selector{MethodKind: wave.MethodHyp, MethodName: string(m)}
}

// CmdSelector builds a selector matching a specific Cmd-namespace method.
func CmdSelector(name string) Selector {
	return Selector{MethodKind: wave.MethodCmd, MethodName: name}
}

// ExtSelector builds a selector matching a specific Ext-namespace method.
func ExtSelector(name string) Selector {
	return Selector{MethodKind: wave.MethodExt, MethodName: name}
}

// HttpSelector builds a selector matching an Http verb under a URI prefix.
func HttpSelector(verb, uriPrefix string) Selector {
	return Selector{MethodKind: wave.MethodHttp, MethodName: verb, URIPrefix: uriPrefix}
}

// WithBody narrows s to also require the given Substance kind on the body.
func (s Selector) WithBody(kind wave.SubstanceKind) Selector {
	s.BodyKind = kind
	s.RequireBodyKind = true
	return s
}

// Accepts reports whether the selector matches the given core's
// (method, uri, body kind), per spec.md §4.6 step 1–2.
func (s Selector) Accepts(core wave.DirectedCore) bool {
	if s.MethodKind != core.Method.Kind {
		return false
	}
	if s.MethodName != "" && s.MethodName != core.Method.Name {
		return false
	}
	if s.URIPrefix != "" && !strings.HasPrefix(core.URI, s.URIPrefix) {
		return false
	}
	if s.RequireBodyKind && s.BodyKind != core.Body.Kind {
		return false
	}
	return true
}
