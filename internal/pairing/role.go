package pairing

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role tags a slot in a pairing group.
type Role int

const (
	RoleEmpty Role = iota
	RoleOurs
	RoleWarped
	RoleUnknown
)

func (r Role) String() string {
	switch r {
	case RoleOurs:
		return "ours"
	case RoleWarped:
		return "warped"
	case RoleUnknown:
		return "unknown"
	default:
		return "empty"
	}
}

// complement returns the other typed role.
func (r Role) complement() Role {
	switch r {
	case RoleOurs:
		return RoleWarped
	case RoleWarped:
		return RoleOurs
	default:
		return RoleEmpty
	}
}

const (
	oursMarker   = "our"
	warpedMarker = "warped"
)

// Classify tags a file by its base name. The markers are case-sensitive and
// "our" wins when both appear.
func Classify(name string) Role {
	base := filepath.Base(name)
	switch {
	case strings.Contains(base, oursMarker):
		return RoleOurs
	case strings.Contains(base, warpedMarker):
		return RoleWarped
	default:
		return RoleUnknown
	}
}

var lower = cases.Lower(language.Und)

// Key normalizes a file stem into its grouping key: the text before the first
// underscore (the whole stem when there is none), lowercased.
func Key(stem string) string {
	if i := strings.IndexByte(stem, '_'); i >= 0 {
		stem = stem[:i]
	}
	return lower.String(stem)
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
