// Package spaceerr implements Starlane's SpaceErr error taxonomy (spec.md
// §7): an HTTP-style status error, structured parse diagnostics, and the
// handful of narrow sentinel kinds the core needs to distinguish.
package spaceerr

import "fmt"

// Canonical status codes used across the core.
const (
	StatusBadRequest = 400
	StatusForbidden  = 403
	StatusNotFound   = 404
	StatusConflict   = 409
	StatusTimeout    = 408
	StatusInternal   = 500
	StatusUnavail    = 503
)

// SpaceErr is the core error type. Exactly one of its fields is
// meaningful for a given error; Kind says which.
type SpaceErr struct {
	Kind Kind

	// Status
	Code    int
	Message string

	// ParseErrs
	Diagnostics []ParseDiagnostic

	// ExpectedSubstance / ExpectedBody
	Expected string
	Got      string

	// KindNotAvailable
	UnavailableKind string

	// Msg
	Msg string
}

// Kind discriminates the SpaceErr taxonomy.
type Kind int

const (
	KindStatus Kind = iota
	KindParseErrs
	KindExpectedSubstance
	KindExpectedBody
	KindKindNotAvailable
	KindMsg
)

// ParseDiagnostic is one structured parser diagnostic with a source span.
type ParseDiagnostic struct {
	Message string
	Span    Span
}

// Span is a half-open [Start,End) byte range into parsed source text.
type Span struct {
	Start, End int
}

func (e *SpaceErr) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%d: %s", e.Code, e.Message)
	case KindParseErrs:
		if len(e.Diagnostics) == 0 {
			return "parse error"
		}
		return fmt.Sprintf("parse error: %s", e.Diagnostics[0].Message)
	case KindExpectedSubstance:
		return fmt.Sprintf("expected substance %s, got %s", e.Expected, e.Got)
	case KindExpectedBody:
		return fmt.Sprintf("expected body %s, got %s", e.Expected, e.Got)
	case KindKindNotAvailable:
		return fmt.Sprintf("kind not available: %s", e.UnavailableKind)
	case KindMsg:
		return e.Msg
	default:
		return "unknown space error"
	}
}

// Status constructs a status-class error.
func Status(code int, message string) *SpaceErr {
	return &SpaceErr{Kind: KindStatus, Code: code, Message: message}
}

// Statusf constructs a status-class error with a formatted message.
func Statusf(code int, format string, args ...any) *SpaceErr {
	return Status(code, fmt.Sprintf(format, args...))
}

// NotFound constructs a 404 error.
func NotFound(message string) *SpaceErr { return Status(StatusNotFound, message) }

// BadRequest constructs a 400 error.
func BadRequest(message string) *SpaceErr { return Status(StatusBadRequest, message) }

// Forbidden constructs a 403 error.
func Forbidden(message string) *SpaceErr { return Status(StatusForbidden, message) }

// Timeout constructs a 408 error.
func Timeout(message string) *SpaceErr { return Status(StatusTimeout, message) }

// Internal constructs a 500 error.
func Internal(message string) *SpaceErr { return Status(StatusInternal, message) }

// Unavailable constructs a 503 error.
func Unavailable(message string) *SpaceErr { return Status(StatusUnavail, message) }

// Conflict constructs a 409 error (e.g. a registry Dupe when the register
// strategy isn't Ensure).
func Conflict(message string) *SpaceErr { return Status(StatusConflict, message) }

// ParseErrs constructs a structured-parse-diagnostic error.
func ParseErrs(diags ...ParseDiagnostic) *SpaceErr {
	return &SpaceErr{Kind: KindParseErrs, Diagnostics: diags}
}

// ExpectedSubstance constructs a type-mismatch error for hyper-substance
// unwrapping.
func ExpectedSubstance(expected, got string) *SpaceErr {
	return &SpaceErr{Kind: KindExpectedSubstance, Expected: expected, Got: got}
}

// ExpectedBody constructs a type-mismatch error for directed/reflected
// body unwrapping.
func ExpectedBody(expected, got string) *SpaceErr {
	return &SpaceErr{Kind: KindExpectedBody, Expected: expected, Got: got}
}

// KindNotAvailable constructs an error for a platform that cannot offer a
// kind matching a template.
func KindNotAvailable(kind string) *SpaceErr {
	return &SpaceErr{Kind: KindKindNotAvailable, UnavailableKind: kind}
}

// Msg constructs a catch-all error. Prefer a typed constructor above for
// any recoverable condition; Msg is for conditions with no useful recovery
// path.
func Msg(s string) *SpaceErr { return &SpaceErr{Kind: KindMsg, Msg: s} }

// Msgf constructs a catch-all error with a formatted message.
func Msgf(format string, args ...any) *SpaceErr { return Msg(fmt.Sprintf(format, args...)) }

// StatusCode returns e's HTTP-style status code, mapping non-Status kinds
// to their canonical class per spec.md §7's propagation policy. This is
// the single boundary where the taxonomy is converted to an integer — the
// rest of the core should never branch on status codes directly.
func StatusCode(err error) int {
	se, ok := err.(*SpaceErr)
	if !ok {
		return StatusInternal
	}
	switch se.Kind {
	case KindStatus:
		return se.Code
	case KindParseErrs, KindExpectedSubstance, KindExpectedBody:
		return StatusBadRequest
	case KindKindNotAvailable:
		return StatusNotFound
	default:
		return StatusInternal
	}
}
