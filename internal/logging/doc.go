// Package logging assembles the structured slog loggers used across benchcat.
//
// It owns the console and JSON handlers, level parsing, component loggers, and
// the run-scoped correlation field that ties every line of one batch run
// together. NewNop serves tests and wiring code that cannot fail.
package logging
