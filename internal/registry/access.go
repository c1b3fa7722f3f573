package registry

import "github.com/starlane-io/starlane/internal/point"

// HyperUser is the well-known grantee identity that always resolves to
// Super (or SuperOwner, on a particle it also owns) regardless of any
// explicit grant (spec.md §4.9: "access(hyperuser, *) returns Super or
// SuperOwner").
const HyperUser = "hyperuser"

// Permission is a bitmask of the concrete capabilities a grant's mask
// carries. Grants compose over this mask (PermissionsMask::Or / ::And);
// the composed mask is reported alongside the coarser Level in Access.
type Permission uint32

const (
	PermRead Permission = 1 << iota
	PermWrite
	PermExecute
)

// PermAll is the full permission mask, the identity element for a
// PermissionsMask's And side.
const PermAll = PermRead | PermWrite | PermExecute

// Level is the coarse access level Access() reports, ordered from no
// access to full super-owner access. Comparing with >= checks a minimum
// requirement, e.g. `access.Level >= Owner`.
type Level int

const (
	None Level = iota
	Enumerated
	Owner
	Super
	SuperOwner
)

func (l Level) String() string {
	switch l {
	case None:
		return "None"
	case Enumerated:
		return "Enumerated"
	case Owner:
		return "Owner"
	case Super:
		return "Super"
	case SuperOwner:
		return "SuperOwner"
	default:
		return "Unknown"
	}
}

// Access is the result of Registry.Access(to, on): a coarse Level plus
// the fine-grained Permission mask composed from every applicable grant.
type Access struct {
	Level       Level
	Permissions Permission
}

// AtLeast reports whether a's level meets or exceeds min.
func (a Access) AtLeast(min Level) bool { return a.Level >= min }

// PermissionsMask is one grant's Or/And composition step (spec.md §4.9):
// Or adds permissions, And masks the accumulated result. HasAnd
// distinguishes an explicit "And(0)", which masks every permission away,
// from "no And clause at all" — both leave And as zero bits, but only the
// former narrows the final intersection.
type PermissionsMask struct {
	Or     Permission
	And    Permission
	HasAnd bool
}

// AccessGrant is one entry of the access_grants table: a grantee ("to"
// may be a user point string or HyperUser), the point it applies to, and
// the permission mask it contributes.
type AccessGrant struct {
	ID   string
	On   point.Point
	To   string
	Mask PermissionsMask
}

// ComposeGrants implements the grant algebra of spec.md §4.9: "Or adds
// permissions; And masks intersect; all ANDs apply after all ORs". grants
// is expected to already be filtered to the ones applicable to a single
// (to, on) pair, in any order — the algebra is commutative and
// associative within each phase.
func ComposeGrants(grants []AccessGrant) Permission {
	var ored Permission
	anded := PermAll
	sawAnd := false
	for _, g := range grants {
		ored |= g.Mask.Or
		if g.Mask.HasAnd {
			anded &= g.Mask.And
			sawAnd = true
		}
	}
	if !sawAnd {
		return ored
	}
	return ored & anded
}
