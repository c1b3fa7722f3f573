package transmit

import (
	"github.com/starlane-io/starlane/internal/point"
	"github.com/starlane-io/starlane/internal/wave"
)

// Proto is a proto-wave: the caller-supplied, partially-defaulted
// description of an outgoing directed wave. Pointer fields are "unset"
// when nil, letting the Transmitter's Fills tell unset apart from
// explicitly zero.
type Proto struct {
	Kind wave.Kind

	From *point.Surface
	To   wave.Recipients
	Via  *point.Surface

	Agent    *wave.Agent
	Scope    *string
	Handling *wave.Handling
	Bounce   *wave.BounceBacks

	Method  wave.Method
	URI     string
	Headers map[string]string
	Body    wave.Substance

	// History seeds a Ripple's visited-stars set; typically left nil so
	// the Transmitter starts with an empty history.
	History map[string]struct{}
}

// PingProto builds a minimal Ping proto-wave.
func PingProto(to point.Surface, method wave.Method, body wave.Substance) Proto {
	return Proto{
		Kind:   wave.KindPing,
		To:     wave.ToSingle(to),
		Method: method,
		Body:   body,
	}
}

// RippleProto builds a minimal Ripple proto-wave.
func RippleProto(to wave.Recipients, method wave.Method, body wave.Substance, bounce wave.BounceBacks) Proto {
	return Proto{
		Kind:   wave.KindRipple,
		To:     to,
		Method: method,
		Body:   body,
		Bounce: &bounce,
	}
}

// SignalProto builds a minimal Signal proto-wave (never reflected).
func SignalProto(to point.Surface, method wave.Method, body wave.Substance) Proto {
	return Proto{
		Kind:   wave.KindSignal,
		To:     wave.ToSingle(to),
		Method: method,
		Body:   body,
	}
}

// BounceProto builds the liveness-check Ping described in spec.md §4.2:
// "ping with Cmd::Bounce to test liveness."
func BounceProto(to point.Surface) Proto {
	return PingProto(to, wave.Cmd("Bounce"), wave.Empty())
}
