package ffmpeg

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"

	"benchcat/internal/failure"
)

// PlaybackEncoder is the ffmpeg encoder behind PlaybackArgs.
const PlaybackEncoder = "libx264"

// PlaybackArgs are the fixed H.264 settings used for browser playback copies.
var PlaybackArgs = []string{"-c:v", PlaybackEncoder, "-crf", "23", "-preset", "fast", "-movflags", "+faststart"}

// Transcoder re-encodes finished comparison videos.
type Transcoder struct {
	Binary string
}

// NewTranscoder constructs a Transcoder; a blank binary means ffmpeg on PATH.
func NewTranscoder(binary string) *Transcoder {
	return &Transcoder{Binary: binary}
}

func (t *Transcoder) binary() string {
	if b := strings.TrimSpace(t.Binary); b != "" {
		return b
	}
	return "ffmpeg"
}

// Command returns the argv used to transcode input into output.
func (t *Transcoder) Command(input, output string) []string {
	argv := []string{t.binary(), "-nostdin", "-i", input}
	argv = append(argv, PlaybackArgs...)
	return append(argv, output)
}

// Reencode runs the transcode. A missing binary or non-zero exit is reported
// as ErrExternalTool carrying ffmpeg's stderr verbatim; nothing is retried.
func (t *Transcoder) Reencode(ctx context.Context, input, output string) error {
	argv := t.Command(input, output)
	cmd := commandContext(ctx, argv[0], argv[1:]...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return failure.Wrap(failure.ErrExternalTool, "ffmpeg", "transcode", argv[0]+" not found; install FFmpeg and ensure it is on PATH", err)
		}
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = "ffmpeg failed"
		}
		return failure.Wrap(failure.ErrExternalTool, "ffmpeg", "transcode", message, err)
	}
	return nil
}
