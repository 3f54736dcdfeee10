package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"

	"benchcat/internal/failure"
	"benchcat/internal/media/ffprobe"
	"benchcat/internal/streams"
)

// Decoder opens video files as rgba frame readers.
type Decoder struct {
	FFmpegBinary  string
	FFprobeBinary string
}

// NewDecoder constructs a Decoder using the given binaries; blank names fall
// back to ffmpeg and ffprobe on PATH.
func NewDecoder(ffmpegBinary, ffprobeBinary string) *Decoder {
	return &Decoder{FFmpegBinary: ffmpegBinary, FFprobeBinary: ffprobeBinary}
}

// Probe reads stream metadata without starting a decode.
func (d *Decoder) Probe(ctx context.Context, path string) (streams.Info, error) {
	if _, err := os.Stat(path); err != nil {
		return streams.Info{}, failure.Wrap(failure.ErrOpen, "ffmpeg", "probe", path, err)
	}
	result, err := ffprobe.Inspect(ctx, d.FFprobeBinary, path)
	if err != nil {
		return streams.Info{}, failure.Wrap(failure.ErrOpen, "ffmpeg", "probe", path, err)
	}
	stream, ok := result.FirstVideoStream()
	if !ok {
		return streams.Info{}, failure.Wrap(failure.ErrOpen, "ffmpeg", "probe", path+": no video stream", nil)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return streams.Info{}, failure.Wrap(failure.ErrOpen, "ffmpeg", "probe", fmt.Sprintf("%s: invalid dimensions %dx%d", path, stream.Width, stream.Height), nil)
	}
	return streams.Info{
		Path:       path,
		Width:      stream.Width,
		Height:     stream.Height,
		FPS:        int(stream.FrameRate()),
		FrameCount: stream.FrameCount(result.DurationSeconds()),
	}, nil
}

// Open implements streams.Opener.
func (d *Decoder) Open(ctx context.Context, path string) (streams.Reader, error) {
	info, err := d.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	binary := strings.TrimSpace(d.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	args := []string{
		"-nostdin", "-hide_banner", "-v", "error",
		"-noautorotate",
		"-i", path,
		"-map", "0:v:0",
		"-fps_mode", "passthrough",
		"-f", "rawvideo", "-pix_fmt", "rgba",
		"pipe:1",
	}
	cmd := commandContext(ctx, binary, args...) //nolint:gosec
	stderr := newTailBuffer(stderrTailBytes)
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, failure.Wrap(failure.ErrOpen, "ffmpeg", "decode", path, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, failure.Wrap(failure.ErrOpen, "ffmpeg", "start decoder", path, err)
	}

	return &decodeHandle{
		info:   info,
		cmd:    cmd,
		stdout: bufio.NewReaderSize(stdout, 1<<20),
		stderr: stderr,
	}, nil
}

type decodeHandle struct {
	info      streams.Info
	cmd       *exec.Cmd
	stdout    *bufio.Reader
	stderr    *tailBuffer
	exhausted bool
	closed    bool
}

func (h *decodeHandle) Info() streams.Info { return h.info }

func (h *decodeHandle) Read() (*image.RGBA, error) {
	if h.closed || h.exhausted {
		return nil, io.EOF
	}
	img := image.NewRGBA(image.Rect(0, 0, h.info.Width, h.info.Height))
	if _, err := io.ReadFull(h.stdout, img.Pix); err != nil {
		h.exhausted = true
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.New(withDiagnostics("truncated frame", h.stderr))
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return img, nil
}

// Close reaps the decoder process. A decoder abandoned before end of stream is
// killed and its exit status ignored.
func (h *decodeHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	if !h.exhausted && h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
		_ = h.cmd.Wait()
		return nil
	}
	if err := h.cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w", withDiagnostics("ffmpeg decoder exited", h.stderr), err)
	}
	return nil
}

var _ streams.Opener = (*Decoder)(nil)
