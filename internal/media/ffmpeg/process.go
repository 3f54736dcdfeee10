package ffmpeg

import (
	"os/exec"
	"strings"
	"sync"
)

var commandContext = exec.CommandContext

const stderrTailBytes = 4096

// tailBuffer keeps the last few KiB written to it; ffmpeg diagnostics land at
// the end of stderr.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append([]byte(nil), b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.buf))
}

func withDiagnostics(message string, stderr *tailBuffer) string {
	if stderr == nil {
		return message
	}
	if tail := stderr.String(); tail != "" {
		return message + ": " + tail
	}
	return message
}
