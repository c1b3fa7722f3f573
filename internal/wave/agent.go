package wave

import "github.com/starlane-io/starlane/internal/point"

// AgentKind tags the Agent tagged union.
type AgentKind int

const (
	AgentAnonymous AgentKind = iota
	AgentHyperUser
	AgentPoint
)

// Agent identifies who is responsible for a wave: nobody in particular
// (Anonymous), the privileged hyperlane transport itself (HyperUser), or a
// specific authenticated particle (Point).
type Agent struct {
	Kind  AgentKind
	Point point.Point // set when Kind == AgentPoint
}

// Anonymous is the zero-value unauthenticated agent.
func Anonymous() Agent { return Agent{Kind: AgentAnonymous} }

// HyperUser is the agent stamped on waves originated by the hyperlane
// transport layer itself (e.g. Hop/Transport signals), which carries full
// trust between stars.
func HyperUser() Agent { return Agent{Kind: AgentHyperUser} }

// AsPoint wraps an authenticated particle point as an Agent.
func AsPoint(p point.Point) Agent { return Agent{Kind: AgentPoint, Point: p} }

func (a Agent) String() string {
	switch a.Kind {
	case AgentAnonymous:
		return "Anonymous"
	case AgentHyperUser:
		return "HyperUser"
	case AgentPoint:
		return "Point(" + a.Point.String() + ")"
	default:
		return "Unknown"
	}
}
