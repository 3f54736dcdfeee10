package testsupport

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"benchcat/internal/failure"
	"benchcat/internal/streams"
)

// FakeSource describes a synthetic video served by FakeOpener.
type FakeSource struct {
	Width  int
	Height int
	FPS    int
	Frames int
	// FailAfter makes Read return a decode error after this many frames when > 0.
	FailAfter int
	// Sizes optionally overrides the frame size per frame index.
	Sizes map[int]image.Point
}

// FakeOpener serves FakeSources by path and counts handle lifecycle calls.
type FakeOpener struct {
	mu      sync.Mutex
	Sources map[string]FakeSource
	opens   int
	closes  int
}

// NewFakeOpener returns an opener for the given sources.
func NewFakeOpener(sources map[string]FakeSource) *FakeOpener {
	return &FakeOpener{Sources: sources}
}

// Open implements streams.Opener. Unknown paths fail with ErrOpen.
func (o *FakeOpener) Open(_ context.Context, path string) (streams.Reader, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	src, ok := o.Sources[path]
	if !ok {
		return nil, failure.Wrap(failure.ErrOpen, "fake", "open", path, errors.New("no such source"))
	}
	o.opens++
	fps := src.FPS
	if fps == 0 {
		fps = 30
	}
	return &fakeReader{owner: o, src: src, info: streams.Info{
		Path:       path,
		Width:      src.Width,
		Height:     src.Height,
		FPS:        fps,
		FrameCount: src.Frames,
	}}, nil
}

// Opens reports how many readers were handed out.
func (o *FakeOpener) Opens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens
}

// Closes reports how many readers were closed.
func (o *FakeOpener) Closes() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closes
}

// OpenHandles reports readers opened but not yet closed.
func (o *FakeOpener) OpenHandles() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens - o.closes
}

type fakeReader struct {
	owner  *FakeOpener
	src    FakeSource
	info   streams.Info
	next   int
	closed bool
}

func (r *fakeReader) Info() streams.Info { return r.info }

func (r *fakeReader) Read() (*image.RGBA, error) {
	if r.closed {
		return nil, errors.New("read after close")
	}
	if r.src.FailAfter > 0 && r.next >= r.src.FailAfter {
		return nil, errors.New("corrupt packet")
	}
	if r.next >= r.src.Frames {
		return nil, io.EOF
	}
	size := image.Pt(r.src.Width, r.src.Height)
	if override, ok := r.src.Sizes[r.next]; ok {
		size = override
	}
	img := FrameOf(size.X, size.Y, uint8(r.next))
	r.next++
	return img, nil
}

func (r *fakeReader) Close() error {
	if r.closed {
		return errors.New("double close")
	}
	r.closed = true
	r.owner.mu.Lock()
	r.owner.closes++
	r.owner.mu.Unlock()
	return nil
}

// FrameOf returns a width x height frame filled with a shade derived from tag.
func FrameOf(width, height int, tag uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	c := color.RGBA{R: tag, G: 0x80, B: 0xff - tag, A: 0xff}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// FakeCreator records encode handles and the frames written to them.
type FakeCreator struct {
	mu sync.Mutex
	// CreateErr fails every Create call when set.
	CreateErr error
	// FailWriteAfter fails Write once this many frames were accepted when > 0.
	FailWriteAfter int
	// CloseErr is returned from Writer.Close when set.
	CloseErr error

	Specs   []streams.WriterSpec
	Writers []*FakeWriter
}

// Create implements streams.Creator.
func (c *FakeCreator) Create(_ context.Context, spec streams.WriterSpec) (streams.Writer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.CreateErr != nil {
		return nil, failure.Wrap(failure.ErrWrite, "fake", "create", spec.Path, c.CreateErr)
	}
	w := &FakeWriter{spec: spec, failAfter: c.FailWriteAfter, closeErr: c.CloseErr}
	c.Specs = append(c.Specs, spec)
	c.Writers = append(c.Writers, w)
	return w, nil
}

// OpenWriters reports writers created but not closed.
func (c *FakeCreator) OpenWriters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	open := 0
	for _, w := range c.Writers {
		if w.Closes == 0 {
			open++
		}
	}
	return open
}

// FakeWriter stores every frame it receives.
type FakeWriter struct {
	spec      streams.WriterSpec
	failAfter int
	closeErr  error

	Frames []*image.RGBA
	Closes int
}

func (w *FakeWriter) Write(img *image.RGBA) error {
	if w.Closes > 0 {
		return errors.New("write after close")
	}
	if w.failAfter > 0 && len(w.Frames) >= w.failAfter {
		return fmt.Errorf("disk full after %d frames", len(w.Frames))
	}
	b := img.Bounds()
	if b.Dx() != w.spec.Width || b.Dy() != w.spec.Height {
		return fmt.Errorf("frame %dx%d does not match writer %dx%d", b.Dx(), b.Dy(), w.spec.Width, w.spec.Height)
	}
	w.Frames = append(w.Frames, img)
	return nil
}

func (w *FakeWriter) Close() error {
	w.Closes++
	return w.closeErr
}
