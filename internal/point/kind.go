package point

// Discriminant tags the member of the Kind tagged union a particle belongs
// to.
type Discriminant string

const (
	KindRoot       Discriminant = "Root"
	KindSpace      Discriminant = "Space"
	KindBase       Discriminant = "Base"
	KindUser       Discriminant = "User"
	KindUserBase   Discriminant = "UserBase"
	KindApp        Discriminant = "App"
	KindMechtron   Discriminant = "Mechtron"
	KindFileSystem Discriminant = "FileSystem"
	KindFile       Discriminant = "File"
	KindArtifact   Discriminant = "Artifact"
	KindControl    Discriminant = "Control"
	KindPortal     Discriminant = "Portal"
	KindStar       Discriminant = "Star"
	KindGlobal     Discriminant = "Global"
)

// Kind is a particle kind: a tagged union with an optional Sub
// discriminator for the variants that carry one (Base, UserBase, File,
// Artifact, Star).
type Kind struct {
	Discriminant Discriminant
	Sub          string
}

func (k Kind) String() string {
	if k.Sub == "" {
		return string(k.Discriminant)
	}
	return string(k.Discriminant) + "<" + k.Sub + ">"
}

// Equal reports whether k and o are the same kind (and sub-kind, if any).
func (k Kind) Equal(o Kind) bool {
	return k.Discriminant == o.Discriminant && k.Sub == o.Sub
}

// Selector matches a Kind, optionally wildcarding the sub-kind.
type Selector struct {
	Discriminant Discriminant
	Sub          string // ignored when MatchAnySub is true
	MatchAnySub  bool
}

// Matches reports whether k satisfies the selector.
func (sel Selector) Matches(k Kind) bool {
	if sel.Discriminant != k.Discriminant {
		return false
	}
	if sel.MatchAnySub {
		return true
	}
	return sel.Sub == k.Sub
}

// SelectorFor builds an exact-match selector for k.
func SelectorFor(k Kind) Selector {
	return Selector{Discriminant: k.Discriminant, Sub: k.Sub}
}

func (sel Selector) String() string {
	if sel.MatchAnySub {
		return string(sel.Discriminant) + "<*>"
	}
	if sel.Sub == "" {
		return string(sel.Discriminant)
	}
	return string(sel.Discriminant) + "<" + sel.Sub + ">"
}

// StarSub is a star's kind: which particle kinds it hosts and which peer
// kinds it must wrangle.
type StarSub string

const (
	StarCentral   StarSub = "Central"
	StarSuper     StarSub = "Super"
	StarNexus     StarSub = "Nexus"
	StarMaelstrom StarSub = "Maelstrom"
	StarScribe    StarSub = "Scribe"
	StarJump      StarSub = "Jump"
	StarFold      StarSub = "Fold"
	StarMachine   StarSub = "Machine"
)
