package pairing

import (
	"sort"
	"strings"
)

// Pair is a resolved comparison. Concatenation order is Warped then Ours.
type Pair struct {
	Key    string
	Warped string
	Ours   string
}

// Inputs returns the pair in canvas order.
func (p Pair) Inputs() []string {
	return []string{p.Warped, p.Ours}
}

// Incomplete names a key that never gained both roles.
type Incomplete struct {
	Key     string
	Missing []Role
	Files   []string
}

// MissingString renders the missing roles for reports.
func (i Incomplete) MissingString() string {
	names := make([]string, len(i.Missing))
	for n, r := range i.Missing {
		names[n] = r.String()
	}
	return strings.Join(names, "+")
}

// Result is the outcome of matching one directory.
type Result struct {
	// Pairs are sorted by key.
	Pairs      []Pair
	Incomplete []Incomplete
	// Unmatched lists every input that did not end up in a pair, sorted.
	Unmatched []string
}

// Match groups paths in input order. It fails only when two untagged files
// share a key with nothing to tell them apart.
func Match(paths []string) (Result, error) {
	groups := make(map[string]*Group)
	var displaced []string
	for _, path := range paths {
		key := Key(stemOf(path))
		group, ok := groups[key]
		if !ok {
			group = &Group{Key: key}
			groups[key] = group
		}
		lost, err := group.Insert(Classify(path), path)
		if err != nil {
			return Result{}, err
		}
		if lost != "" {
			displaced = append(displaced, lost)
		}
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var result Result
	unmatched := displaced
	for _, key := range keys {
		group := groups[key]
		if group.Complete() {
			result.Pairs = append(result.Pairs, Pair{Key: key, Warped: group.Warped.Path, Ours: group.Ours.Path})
			if !group.Unknown.empty() {
				unmatched = append(unmatched, group.Unknown.Path)
			}
			continue
		}
		result.Incomplete = append(result.Incomplete, Incomplete{Key: key, Missing: group.Missing(), Files: group.Files()})
		unmatched = append(unmatched, group.Files()...)
	}
	sort.Strings(unmatched)
	result.Unmatched = unmatched
	return result, nil
}
