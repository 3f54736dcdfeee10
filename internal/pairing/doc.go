// Package pairing groups loose comparison clips into (warped, ours) pairs.
//
// Files are tagged by filename substring and grouped by the stem text before
// the first underscore. Each group is a small state machine of role slots; an
// untagged file takes whichever role its group is missing.
package pairing
