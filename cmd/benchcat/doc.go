// Command benchcat prepares benchmark comparison videos: it renames and
// flattens raw method outputs, crops MotionPro renders, concatenates
// per-scene videos side by side, and re-encodes the results for browser
// playback.
//
// Every batch command prints a summary table (or the full report with
// --json) and exits non-zero when any item failed.
package main
