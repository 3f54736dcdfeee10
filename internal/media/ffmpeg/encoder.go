package ffmpeg

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"benchcat/internal/failure"
	"benchcat/internal/streams"
)

// Encoder creates video files from rgba frames.
type Encoder struct {
	Binary string
	// Codec is the ffmpeg video encoder name (for example mpeg4).
	Codec string
	// Tag is the optional codec tag (for example mp4v).
	Tag string
	// Quality is passed as -q:v when > 0.
	Quality int
}

// NewEncoder constructs an Encoder; blank values use mpeg4/mp4v.
func NewEncoder(binary, codec, tag string, quality int) *Encoder {
	return &Encoder{Binary: binary, Codec: codec, Tag: tag, Quality: quality}
}

func (e *Encoder) args(spec streams.WriterSpec) []string {
	codec := strings.TrimSpace(e.Codec)
	if codec == "" {
		codec = "mpeg4"
	}
	args := []string{
		"-y", "-hide_banner", "-v", "error",
		"-f", "rawvideo", "-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-r", strconv.Itoa(spec.FPS),
		"-i", "pipe:0",
		"-an",
		"-c:v", codec,
	}
	if tag := strings.TrimSpace(e.Tag); tag != "" {
		args = append(args, "-tag:v", tag)
	}
	if e.Quality > 0 {
		args = append(args, "-q:v", strconv.Itoa(e.Quality))
	}
	return append(args, "-pix_fmt", "yuv420p", spec.Path)
}

// Create implements streams.Creator. The destination is created up front so an
// unwritable path fails here rather than on the first frame.
func (e *Encoder) Create(ctx context.Context, spec streams.WriterSpec) (streams.Writer, error) {
	if spec.Width <= 0 || spec.Height <= 0 || spec.FPS <= 0 {
		return nil, failure.Wrap(failure.ErrWrite, "ffmpeg", "create writer", fmt.Sprintf("%s: invalid geometry %dx%d@%d", spec.Path, spec.Width, spec.Height, spec.FPS), nil)
	}
	dir := filepath.Dir(spec.Path)
	if info, err := os.Stat(dir); err != nil {
		return nil, failure.Wrap(failure.ErrWrite, "ffmpeg", "create writer", spec.Path, err)
	} else if !info.IsDir() {
		return nil, failure.Wrap(failure.ErrWrite, "ffmpeg", "create writer", dir+" is not a directory", nil)
	}
	probe, err := os.OpenFile(spec.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, failure.Wrap(failure.ErrWrite, "ffmpeg", "create writer", spec.Path, err)
	}
	_ = probe.Close()

	binary := strings.TrimSpace(e.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := commandContext(ctx, binary, e.args(spec)...) //nolint:gosec
	stderr := newTailBuffer(stderrTailBytes)
	cmd.Stderr = stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, failure.Wrap(failure.ErrWrite, "ffmpeg", "create writer", spec.Path, err)
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return nil, failure.Wrap(failure.ErrWrite, "ffmpeg", "start encoder", spec.Path, err)
	}
	return &encodeHandle{spec: spec, cmd: cmd, stdin: stdin, stderr: stderr}, nil
}

type encodeHandle struct {
	spec   streams.WriterSpec
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tailBuffer
	closed bool
}

func (h *encodeHandle) Write(img *image.RGBA) error {
	if h.closed {
		return failure.Wrap(failure.ErrWrite, "ffmpeg", "write", h.spec.Path+": writer closed", nil)
	}
	b := img.Bounds()
	if b.Dx() != h.spec.Width || b.Dy() != h.spec.Height {
		return failure.Wrap(failure.ErrWrite, "ffmpeg", "write", fmt.Sprintf("%s: frame %dx%d does not match %dx%d", h.spec.Path, b.Dx(), b.Dy(), h.spec.Width, h.spec.Height), nil)
	}
	rowBytes := b.Dx() * 4
	if img.Stride == rowBytes && b.Min == (image.Point{}) {
		if _, err := h.stdin.Write(img.Pix[:rowBytes*b.Dy()]); err != nil {
			return failure.Wrap(failure.ErrWrite, "ffmpeg", "write", withDiagnostics(h.spec.Path, h.stderr), err)
		}
		return nil
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		if _, err := h.stdin.Write(img.Pix[off : off+rowBytes]); err != nil {
			return failure.Wrap(failure.ErrWrite, "ffmpeg", "write", withDiagnostics(h.spec.Path, h.stderr), err)
		}
	}
	return nil
}

// Close ends the input stream and waits for ffmpeg to finalize the file.
func (h *encodeHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	closeErr := h.stdin.Close()
	if err := h.cmd.Wait(); err != nil {
		return failure.Wrap(failure.ErrWrite, "ffmpeg", "finalize", withDiagnostics(h.spec.Path, h.stderr), err)
	}
	if closeErr != nil {
		return failure.Wrap(failure.ErrWrite, "ffmpeg", "finalize", h.spec.Path, closeErr)
	}
	return nil
}

var _ streams.Creator = (*Encoder)(nil)
