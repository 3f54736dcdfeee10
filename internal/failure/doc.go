// Package failure defines the error taxonomy shared by the benchcat pipeline
// and its batch workflows.
//
// Errors are tagged with one of the exported sentinel markers via Wrap so
// callers can classify them with errors.Is while still reading a message that
// names the component and operation that failed. Code converts a tagged error
// into the stable identifier recorded in workflow reports and the run history.
package failure
