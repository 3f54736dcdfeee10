package composite

// State is the lifecycle position of one pipeline run.
type State int

const (
	StateInit State = iota
	StateStreamsOpen
	StateRunning
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateStreamsOpen:
		return "streams_open"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run has finished.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
