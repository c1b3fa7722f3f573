// Package transmit implements the transmitter (spec.md §4.3): the public
// entry point particles use to send waves. It fills defaultable fields on
// an outgoing proto-wave, submits the resulting directed wave to the
// exchanger for correlation, then to a router, and awaits the reflection.
package transmit

import (
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/wave"
)

// Strategy selects how a Transmitter fills one defaultable field on an
// outgoing proto-wave.
type Strategy int

const (
	// StrategyRequired means the proto must already set the field; fill
	// returns an error if it's unset.
	StrategyRequired Strategy = iota
	// StrategyFill uses the proto's value if set, falling back to the
	// transmitter's configured default otherwise.
	StrategyFill
	// StrategyOverride always uses the transmitter's configured value,
	// ignoring whatever the proto set.
	StrategyOverride
)

// Fills configures the per-field fill strategy a Transmitter applies.
// Field names match spec.md §4.3's list: agent, scope, handling, method,
// from, to, via. The Method and To strategies are not read: fill always
// rejects a proto that leaves method or a single to unset.
type Fills struct {
	Agent    Strategy
	Scope    Strategy
	Handling Strategy
	Method   Strategy
	From     Strategy
	To       Strategy
	Via      Strategy
}

// DefaultFills is the conventional configuration: `from` is always the
// transmitter's own surface (Override); agent/scope/handling are filled
// only if the proto left them unset; method and to must be supplied by
// the caller; via is left alone unless the caller supplies one.
func DefaultFills() Fills {
	return Fills{
		Agent:    StrategyFill,
		Scope:    StrategyFill,
		Handling: StrategyFill,
		Method:   StrategyRequired,
		From:     StrategyOverride,
		To:       StrategyRequired,
		Via:      StrategyFill,
	}
}

// Defaults holds the transmitter's own values for fields that use
// StrategyFill or StrategyOverride.
type Defaults struct {
	From     point.Surface
	Agent    wave.Agent
	Scope    string
	Handling wave.Handling
	Via      *point.Surface
}

func fillSurface(strategy Strategy, proto *point.Surface, def point.Surface) (point.Surface, error) {
	switch strategy {
	case StrategyOverride:
		return def, nil
	case StrategyRequired:
		if proto == nil {
			return point.Surface{}, errRequired("surface")
		}
		return *proto, nil
	default: // StrategyFill
		if proto != nil {
			return *proto, nil
		}
		return def, nil
	}
}

func fillAgent(strategy Strategy, proto *wave.Agent, def wave.Agent) (wave.Agent, error) {
	switch strategy {
	case StrategyOverride:
		return def, nil
	case StrategyRequired:
		if proto == nil {
			return wave.Agent{}, errRequired("agent")
		}
		return *proto, nil
	default:
		if proto != nil {
			return *proto, nil
		}
		return def, nil
	}
}

func fillHandling(strategy Strategy, proto *wave.Handling, def wave.Handling) (wave.Handling, error) {
	switch strategy {
	case StrategyOverride:
		return def, nil
	case StrategyRequired:
		if proto == nil {
			return wave.Handling{}, errRequired("handling")
		}
		return *proto, nil
	default:
		if proto != nil {
			return *proto, nil
		}
		return def, nil
	}
}

func fillString(strategy Strategy, proto *string, def string) (string, error) {
	switch strategy {
	case StrategyOverride:
		return def, nil
	case StrategyRequired:
		if proto == nil {
			return "", errRequired("scope")
		}
		return *proto, nil
	default:
		if proto != nil {
			return *proto, nil
		}
		return def, nil
	}
}

func fillVia(strategy Strategy, proto, def *point.Surface) (*point.Surface, error) {
	switch strategy {
	case StrategyOverride:
		return def, nil
	case StrategyRequired:
		if proto == nil {
			return nil, errRequired("via")
		}
		return proto, nil
	default:
		if proto != nil {
			return proto, nil
		}
		return def, nil
	}
}

type fillError struct{ field string }

func (e *fillError) Error() string { return "transmit: required field not set on proto-wave: " + e.field }

func errRequired(field string) error { return &fillError{field: field} }
