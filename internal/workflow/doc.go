// Package workflow runs the batch operations over benchmark dataset
// directories: renaming, flattening, cropping, concatenation, and the
// playback re-encode.
//
// Every workflow walks its directories in lexical order, turns each unit of
// work into an ItemResult, and returns the ordered Report. Only conditions
// that prevent a workflow from starting at all (a missing root, a root
// without subdirectories, a root locked by another run) are returned as
// errors; everything else is recorded on the report and the batch moves on.
// Finished reports are handed to the configured Sinks (run history,
// metrics).
package workflow
