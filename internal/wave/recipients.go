package wave

import "github.com/starlane-io/starlane/internal/point"

// RecipientsKind tags the Recipients tagged union.
type RecipientsKind int

const (
	RecipientsSingle RecipientsKind = iota
	RecipientsMulti
	RecipientsWatchers
	RecipientsStars
)

// Recipients is the addressing of a wave's `to` field: a single surface
// for Ping/Pong/Echo/Signal, or one of three broadcast shapes for Ripple.
type Recipients struct {
	Kind   RecipientsKind
	Single point.Surface   // set when Kind == RecipientsSingle
	Multi  []point.Surface // set when Kind == RecipientsMulti
}

// ToSingle addresses a single surface.
func ToSingle(s point.Surface) Recipients {
	return Recipients{Kind: RecipientsSingle, Single: s}
}

// ToMulti addresses an explicit list of surfaces.
func ToMulti(s []point.Surface) Recipients {
	return Recipients{Kind: RecipientsMulti, Multi: s}
}

// ToWatchers addresses every surface currently watching the topic a ripple
// is emitted on.
func ToWatchers() Recipients { return Recipients{Kind: RecipientsWatchers} }

// ToStars addresses every well-known "<Star>::star" point in the
// constellation.
func ToStars() Recipients { return Recipients{Kind: RecipientsStars} }

// Matches reports whether surface s is one of the addressed recipients for
// the Single and Multi shapes. Watchers/Stars resolution happens
// out-of-band (the watch bus and the wrangle table own that expansion
// respectively) so this always reports false for those kinds.
func (r Recipients) Matches(s point.Surface) bool {
	switch r.Kind {
	case RecipientsSingle:
		return r.Single.Equal(s)
	case RecipientsMulti:
		for _, m := range r.Multi {
			if m.Equal(s) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (r Recipients) String() string {
	switch r.Kind {
	case RecipientsSingle:
		return r.Single.String()
	case RecipientsMulti:
		return "Multi"
	case RecipientsWatchers:
		return "Watchers"
	case RecipientsStars:
		return "Stars"
	default:
		return "Unknown"
	}
}
