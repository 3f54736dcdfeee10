// Package streams defines the decode and encode handle contracts used by the
// comparison pipeline and implements Set, a group of decode handles that
// advance in lock-step.
//
// A Set exclusively owns the readers it opens. Opening is all-or-nothing:
// when any source fails, every reader opened so far is closed before the
// error is returned. Close is idempotent and safe to defer on every path.
package streams
