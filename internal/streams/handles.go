package streams

import (
	"context"
	"image"
)

// Info describes an opened video source.
type Info struct {
	Path   string
	Width  int
	Height int
	// FPS is the integer frame rate (fractional rates are truncated).
	FPS int
	// FrameCount is best effort and may be approximate or zero.
	FrameCount int
}

// Reader is an open decode handle. Read returns io.EOF once the source is
// exhausted.
type Reader interface {
	Info() Info
	Read() (*image.RGBA, error)
	Close() error
}

// Opener opens decode handles.
type Opener interface {
	Open(ctx context.Context, path string) (Reader, error)
}

// Writer is an open encode handle. Close flushes and finalizes the file.
type Writer interface {
	Write(img *image.RGBA) error
	Close() error
}

// WriterSpec describes the stream a Writer produces.
type WriterSpec struct {
	Path   string
	FPS    int
	Width  int
	Height int
}

// Creator creates encode handles.
type Creator interface {
	Create(ctx context.Context, spec WriterSpec) (Writer, error)
}
