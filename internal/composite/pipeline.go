package composite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"benchcat/internal/failure"
	"benchcat/internal/frame"
	"benchcat/internal/logging"
	"benchcat/internal/streams"
)

const defaultConcatProgressEvery = 10

// Progress is reported while frames are written.
type Progress struct {
	Output string
	Frames int
	// Total is the expected output frame count derived from the first
	// stream; zero when the container does not report one.
	Total int
}

// Pipeline reads decode handles from Opener and writes through Creator.
type Pipeline struct {
	Opener   streams.Opener
	Creator  streams.Creator
	Logger   *slog.Logger
	Progress func(Progress)
}

// Request describes one concatenation.
type Request struct {
	// Inputs are read in lock-step; their order is the left-to-right canvas order.
	Inputs       []string
	Output       string
	TargetHeight int
	// Slowdown writes every composed frame twice.
	Slowdown      bool
	ProgressEvery int
}

// Result summarizes a finished run.
type Result struct {
	State         State
	Success       bool
	FramesWritten int
	Width         int
	Height        int
	FPS           int
	Output        string
	Diagnostics   []string
}

func (r *Result) diagnose(format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, fmt.Sprintf(format, args...))
}

// fail moves the result to StateFailed and records err as a diagnostic.
func (r *Result) fail(err error) error {
	r.State = StateFailed
	r.Success = false
	r.Diagnostics = append(r.Diagnostics, err.Error())
	return err
}

// Run concatenates req.Inputs side by side into req.Output. The frame rate
// comes from the first input. The first aligned tuple fixes the canvas width;
// later composites of another width are fitted onto that canvas.
func (p *Pipeline) Run(ctx context.Context, req Request) (res Result, err error) {
	res = Result{State: StateInit, Output: req.Output}
	height := req.TargetHeight
	if height <= 0 {
		height = DefaultTargetHeight
	}
	every := req.ProgressEvery
	if every <= 0 {
		every = defaultConcatProgressEvery
	}
	logger := logging.NewComponentLogger(p.Logger, "concat").With(logging.String("output", req.Output))

	set, err := streams.Open(ctx, p.Opener, req.Inputs)
	if err != nil {
		return res, res.fail(err)
	}
	res.State = StateStreamsOpen
	defer func() {
		if closeErr := set.Close(); closeErr != nil {
			res.diagnose("release inputs: %v", closeErr)
			logger.Debug("input release reported errors", logging.Error(closeErr))
		}
	}()

	infos := set.Infos()
	res.FPS = infos[0].FPS
	res.Height = height
	if res.FPS <= 0 {
		return res, res.fail(failure.Wrap(failure.ErrOpen, "concat", "frame rate", fmt.Sprintf("%s reports no usable frame rate", infos[0].Path), nil))
	}
	noteLengthMismatch(&res, infos)
	total := infos[0].FrameCount
	if req.Slowdown {
		total *= 2
	}

	res.State = StateRunning
	tuple, err := set.ReadAligned()
	if err != nil {
		if decodeErr := set.Err(); decodeErr != nil {
			res.diagnose("%v", decodeErr)
		}
		return res, res.fail(failure.Wrap(failure.ErrOpen, "concat", "prime canvas", "no frames decoded", nil))
	}
	canvas, err := Compose(tuple, height)
	if err != nil {
		return res, res.fail(err)
	}
	res.Width = canvas.Bounds().Dx()

	writer, err := p.createWriter(ctx, streams.WriterSpec{Path: req.Output, FPS: res.FPS, Width: res.Width, Height: height})
	if err != nil {
		return res, res.fail(err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			if !errors.Is(closeErr, failure.ErrWrite) {
				closeErr = failure.Wrap(failure.ErrWrite, "concat", "finalize", req.Output, closeErr)
			}
			err = res.fail(closeErr)
		}
	}()

	logger.Info("concatenating videos",
		logging.Int("inputs", len(infos)),
		logging.String("geometry", fmt.Sprintf("%dx%d", res.Width, height)),
		logging.Int("fps", res.FPS),
		logging.Int("expected_frames", total),
		logging.Bool("slowdown", req.Slowdown),
	)

	copies := 1
	if req.Slowdown {
		copies = 2
	}
	warnedWidth := false
	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, res.fail(ctxErr)
		}
		before := res.FramesWritten
		for range copies {
			if err := writer.Write(canvas); err != nil {
				if !errors.Is(err, failure.ErrWrite) {
					err = failure.Wrap(failure.ErrWrite, "concat", "write frame", req.Output, err)
				}
				return res, res.fail(err)
			}
			res.FramesWritten++
		}
		if p.Progress != nil && before/every != res.FramesWritten/every {
			p.Progress(Progress{Output: req.Output, Frames: res.FramesWritten, Total: total})
		}

		tuple, err = set.ReadAligned()
		if err != nil {
			break
		}
		canvas, err = Compose(tuple, height)
		if err != nil {
			return res, res.fail(err)
		}
		if width := canvas.Bounds().Dx(); width != res.Width {
			if !warnedWidth {
				warnedWidth = true
				res.diagnose("composite width changed from %d to %d at output frame %d; frames are fitted to the first canvas", res.Width, width, res.FramesWritten)
				logging.WarnWithContext(logger, "composite width changed mid-stream", "canvas_width_mismatch",
					logging.Int("canvas_width", res.Width),
					logging.Int("frame_width", width),
					logging.String(logging.FieldImpact, "frames cropped or padded to the first canvas"),
				)
			}
			canvas = frame.FitCanvas(canvas, res.Width, height)
		}
	}
	if decodeErr := set.Err(); decodeErr != nil {
		res.diagnose("input ended early: %v", decodeErr)
		logging.WarnWithContext(logger, "input stopped decoding; treated as end of stream", "decode_error",
			logging.Error(decodeErr),
			logging.String(logging.FieldImpact, "output truncated at the last complete tuple"),
		)
	}

	res.State = StateDone
	res.Success = true
	logger.Info("concatenation complete", logging.Int("frames", res.FramesWritten))
	return res, nil
}

func (p *Pipeline) createWriter(ctx context.Context, spec streams.WriterSpec) (streams.Writer, error) {
	if p.Creator == nil {
		return nil, failure.Wrap(failure.ErrWrite, "concat", "create writer", "no encoder configured", nil)
	}
	writer, err := p.Creator.Create(ctx, spec)
	if err != nil {
		if !errors.Is(err, failure.ErrWrite) {
			err = failure.Wrap(failure.ErrWrite, "concat", "create writer", spec.Path, err)
		}
		return nil, err
	}
	return writer, nil
}

func noteLengthMismatch(res *Result, infos []streams.Info) {
	shortest, longest := -1, -1
	for _, info := range infos {
		if info.FrameCount <= 0 {
			return
		}
		if shortest < 0 || info.FrameCount < shortest {
			shortest = info.FrameCount
		}
		if info.FrameCount > longest {
			longest = info.FrameCount
		}
	}
	if shortest != longest {
		res.diagnose("input lengths differ (%d to %d frames); output stops at the shortest", shortest, longest)
	}
}
