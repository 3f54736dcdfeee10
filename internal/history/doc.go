// Package history persists finished workflow reports in a SQLite database
// under the state directory so past runs can be listed and inspected with
// `benchcat history`.
//
// Store implements workflow.Sink. Writes retry briefly when the database is
// busy; a schema version mismatch is reported as ErrSchemaMismatch and the
// database has to be removed by hand.
package history
