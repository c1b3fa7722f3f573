package wave

// MethodKind classifies a directed wave's method namespace.
type MethodKind string

const (
	MethodCmd  MethodKind = "Cmd"
	MethodHyp  MethodKind = "Hyp"
	MethodExt  MethodKind = "Ext"
	MethodHttp MethodKind = "Http"
)

// HypMethod enumerates the Hyp-namespace methods: the core's own
// inter-star control-plane operations.
type HypMethod string

const (
	HypInit      HypMethod = "Init"
	HypAssign    HypMethod = "Assign"
	HypProvision HypMethod = "Provision"
	HypTransport HypMethod = "Transport"
	HypHop       HypMethod = "Hop"
	HypSearch    HypMethod = "Search"
	HypKnock     HypMethod = "Knock"
	HypBounce    HypMethod = "Bounce"
)

// Method is a directed wave's method: a namespace tag (MethodKind) plus,
// for Cmd/Hyp/Ext, the specific operation name within that namespace. Http
// methods carry their verb (GET, POST, ...) directly in Name.
type Method struct {
	Kind MethodKind
	Name string
}

// Hyp builds a Method in the Hyp namespace.
func Hyp(m HypMethod) Method { return Method{Kind: MethodHyp, Name: string(m)} }

// Cmd builds a Method in the Cmd namespace.
func Cmd(name string) Method { return Method{Kind: MethodCmd, Name: name} }

// Ext builds a Method in the Ext namespace (driver/extension-defined
// operations).
func Ext(name string) Method { return Method{Kind: MethodExt, Name: name} }

// Http builds an Http-namespace Method for the given verb.
func Http(verb string) Method { return Method{Kind: MethodHttp, Name: verb} }

func (m Method) String() string {
	return string(m.Kind) + "<" + m.Name + ">"
}

// IsHyp reports whether m is the given Hyp-namespace method.
func (m Method) IsHyp(h HypMethod) bool {
	return m.Kind == MethodHyp && m.Name == string(h)
}

// DirectedCore is the method+body payload carried inside a directed wave.
type DirectedCore struct {
	Method  Method
	URI     string
	Headers map[string]string
	Body    Substance
}

// ReflectedCore is the status+body payload carried inside a reflected
// wave.
type ReflectedCore struct {
	Status  int
	Headers map[string]string
	Body    Substance
}

// OK reports whether the reflected core's status is in the 2xx class.
func (c ReflectedCore) OK() bool { return c.Status >= 200 && c.Status < 300 }

// NewReflectedCore builds a reflected core with the given status and body.
func NewReflectedCore(status int, body Substance) ReflectedCore {
	return ReflectedCore{Status: status, Body: body}
}

// OKCore builds a 200 reflected core with the given body.
func OKCore(body Substance) ReflectedCore { return NewReflectedCore(200, body) }

// ErrCore builds a non-2xx reflected core carrying the error text as its
// body.
func ErrCore(status int, message string) ReflectedCore {
	return NewReflectedCore(status, TextSubstance(message))
}
