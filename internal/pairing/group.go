package pairing

import (
	"fmt"

	"benchcat/internal/failure"
)

// Slot holds one file under a role; the zero Slot is empty.
type Slot struct {
	Role Role
	Path string
}

func (s Slot) empty() bool { return s.Role == RoleEmpty }

// Group accumulates the files that share a key.
type Group struct {
	Key     string
	Ours    Slot
	Warped  Slot
	Unknown Slot
}

// Insert adds path under role. It returns the path of a file that lost its
// slot (a replaced typed file, or an unknown that found no free role), which
// the caller reports as unmatched.
func (g *Group) Insert(role Role, path string) (displaced string, err error) {
	switch role {
	case RoleOurs, RoleWarped:
		slot := g.slot(role)
		if !slot.empty() {
			displaced = slot.Path
		}
		*slot = Slot{Role: role, Path: path}
		if !g.Unknown.empty() {
			other := g.slot(role.complement())
			if other.empty() {
				*other = Slot{Role: role.complement(), Path: g.Unknown.Path}
				g.Unknown = Slot{}
			}
		}
		return displaced, nil

	case RoleUnknown:
		switch {
		case !g.Ours.empty() && g.Warped.empty():
			g.Warped = Slot{Role: RoleWarped, Path: path}
		case g.Ours.empty() && !g.Warped.empty():
			g.Ours = Slot{Role: RoleOurs, Path: path}
		case !g.Ours.empty() && !g.Warped.empty():
			return path, nil
		case !g.Unknown.empty():
			return "", failure.Wrap(failure.ErrAmbiguousPair, "pairing", "insert",
				fmt.Sprintf("key %q: %s and %s are both untagged", g.Key, g.Unknown.Path, path), nil)
		default:
			g.Unknown = Slot{Role: RoleUnknown, Path: path}
		}
		return "", nil
	}
	return "", fmt.Errorf("pairing: cannot insert role %s", role)
}

// Complete reports whether both typed slots are filled.
func (g Group) Complete() bool {
	return !g.Ours.empty() && !g.Warped.empty()
}

// Missing lists the typed roles still empty.
func (g Group) Missing() []Role {
	var missing []Role
	if g.Ours.empty() {
		missing = append(missing, RoleOurs)
	}
	if g.Warped.empty() {
		missing = append(missing, RoleWarped)
	}
	return missing
}

// Files returns every path held by the group.
func (g Group) Files() []string {
	var files []string
	for _, s := range []Slot{g.Ours, g.Warped, g.Unknown} {
		if !s.empty() {
			files = append(files, s.Path)
		}
	}
	return files
}

func (g *Group) slot(role Role) *Slot {
	if role == RoleOurs {
		return &g.Ours
	}
	return &g.Warped
}
