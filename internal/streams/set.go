package streams

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"benchcat/internal/failure"
)

// Set is an ordered group of decode handles read one aligned tuple at a time.
// Order is the caller's path order and becomes left-to-right canvas order.
type Set struct {
	readers []Reader
	closed  bool
	// lastErr records why the most recent tick ended, when it was not a clean EOF.
	lastErr error
}

// Open opens every path in order. On failure, readers that were already opened
// are closed before the ErrOpen-tagged error is returned.
func Open(ctx context.Context, opener Opener, paths []string) (*Set, error) {
	if opener == nil {
		return nil, failure.Wrap(failure.ErrOpen, "streams", "open", "no opener configured", nil)
	}
	if len(paths) == 0 {
		return nil, failure.Wrap(failure.ErrOpen, "streams", "open", "no source paths provided", nil)
	}

	set := &Set{readers: make([]Reader, 0, len(paths))}
	for i, path := range paths {
		reader, err := opener.Open(ctx, path)
		if err != nil {
			closeErr := set.Close()
			if !errors.Is(err, failure.ErrOpen) {
				err = failure.Wrap(failure.ErrOpen, "streams", "open", fmt.Sprintf("source %d (%s)", i, path), err)
			}
			if closeErr != nil {
				return nil, errors.Join(err, closeErr)
			}
			return nil, err
		}
		set.readers = append(set.readers, reader)
	}
	return set, nil
}

// Infos returns the metadata of every stream in order.
func (s *Set) Infos() []Info {
	infos := make([]Info, len(s.readers))
	for i, r := range s.readers {
		infos[i] = r.Info()
	}
	return infos
}

// ReadAligned advances every stream by exactly one frame, in index order. When
// any stream fails to produce a frame the tick ends and io.EOF is returned;
// streams that already advanced on this tick are not rewound. A decode error
// is kept for Err and still reported as end of stream.
func (s *Set) ReadAligned() ([]*image.RGBA, error) {
	if s.closed {
		return nil, io.EOF
	}
	frames := make([]*image.RGBA, len(s.readers))
	for i, r := range s.readers {
		img, err := r.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.lastErr = fmt.Errorf("stream %d (%s): %w", i, r.Info().Path, err)
			}
			return nil, io.EOF
		}
		frames[i] = img
	}
	return frames, nil
}

// Err returns the decode error that ended the last tick, or nil when the set
// ended on a clean end of stream.
func (s *Set) Err() error {
	return s.lastErr
}

// Close releases every reader exactly once. Subsequent calls are no-ops.
func (s *Set) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for i, r := range s.readers {
		if err := r.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stream %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
