// Package composite turns aligned frame tuples into side-by-side comparison
// videos and crops single videos to a fixed box.
//
// Pipeline owns one StreamSet and one writer per run and releases both on
// every exit path. Run reports its terminal state, frame count, geometry, and
// any diagnostics through Result; a non-nil error always carries one of the
// failure markers so batch callers can record a stable code.
package composite
