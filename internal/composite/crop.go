package composite

import (
	"context"
	"errors"
	"fmt"

	"benchcat/internal/failure"
	"benchcat/internal/frame"
	"benchcat/internal/logging"
	"benchcat/internal/streams"
)

const (
	defaultCropProgressEvery = 30
	motionProPortraitHeight  = 512
)

// SelectMotionProCrop returns the box that keeps the right-hand MotionPro
// panel: 320x512 for 512-tall sources, 512x320 otherwise.
func SelectMotionProCrop(height int) frame.CropSpec {
	if height == motionProPortraitHeight {
		return frame.CropSpec{X: -320, Y: 0, W: 320, H: 512}
	}
	return frame.CropSpec{X: -512, Y: 0, W: 512, H: 320}
}

// CropRequest describes a single-stream crop.
type CropRequest struct {
	Input  string
	Output string
	// Spec is the crop box; nil selects SelectMotionProCrop from the source height.
	Spec          *frame.CropSpec
	ProgressEvery int
}

// CropVideo crops every frame of req.Input into req.Output. The writer
// geometry comes from the first cropped frame.
func (p *Pipeline) CropVideo(ctx context.Context, req CropRequest) (res Result, err error) {
	res = Result{State: StateInit, Output: req.Output}
	every := req.ProgressEvery
	if every <= 0 {
		every = defaultCropProgressEvery
	}
	logger := logging.NewComponentLogger(p.Logger, "crop").With(logging.String("output", req.Output))

	set, err := streams.Open(ctx, p.Opener, []string{req.Input})
	if err != nil {
		return res, res.fail(err)
	}
	res.State = StateStreamsOpen
	defer func() {
		if closeErr := set.Close(); closeErr != nil {
			res.diagnose("release input: %v", closeErr)
			logger.Debug("input release reported errors", logging.Error(closeErr))
		}
	}()

	info := set.Infos()[0]
	res.FPS = info.FPS
	if res.FPS <= 0 {
		return res, res.fail(failure.Wrap(failure.ErrOpen, "crop", "frame rate", fmt.Sprintf("%s reports no usable frame rate", info.Path), nil))
	}
	spec := SelectMotionProCrop(info.Height)
	if req.Spec != nil {
		spec = *req.Spec
	}

	res.State = StateRunning
	tuple, err := set.ReadAligned()
	if err != nil {
		if decodeErr := set.Err(); decodeErr != nil {
			res.diagnose("%v", decodeErr)
		}
		return res, res.fail(failure.Wrap(failure.ErrOpen, "crop", "read", "no frames decoded", nil))
	}
	cropped, err := frame.Crop(tuple[0], spec)
	if err != nil {
		return res, res.fail(err)
	}
	res.Width, res.Height = cropped.Bounds().Dx(), cropped.Bounds().Dy()

	writer, err := p.createWriter(ctx, streams.WriterSpec{Path: req.Output, FPS: res.FPS, Width: res.Width, Height: res.Height})
	if err != nil {
		return res, res.fail(err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			if !errors.Is(closeErr, failure.ErrWrite) {
				closeErr = failure.Wrap(failure.ErrWrite, "crop", "finalize", req.Output, closeErr)
			}
			err = res.fail(closeErr)
		}
	}()

	logger.Info("cropping video",
		logging.String("input", req.Input),
		logging.String("source", fmt.Sprintf("%dx%d", info.Width, info.Height)),
		logging.String("crop", spec.String()),
		logging.String("geometry", fmt.Sprintf("%dx%d", res.Width, res.Height)),
		logging.Int("fps", res.FPS),
	)

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, res.fail(ctxErr)
		}
		if err := writer.Write(cropped); err != nil {
			if !errors.Is(err, failure.ErrWrite) {
				err = failure.Wrap(failure.ErrWrite, "crop", "write frame", req.Output, err)
			}
			return res, res.fail(err)
		}
		res.FramesWritten++
		if p.Progress != nil && res.FramesWritten%every == 0 {
			p.Progress(Progress{Output: req.Output, Frames: res.FramesWritten, Total: info.FrameCount})
		}

		tuple, err = set.ReadAligned()
		if err != nil {
			break
		}
		// Sentinels resolve against each frame, so a size change surfaces here.
		cropped, err = frame.Crop(tuple[0], spec)
		if err != nil {
			return res, res.fail(err)
		}
		if b := cropped.Bounds(); b.Dx() != res.Width || b.Dy() != res.Height {
			return res, res.fail(failure.Wrap(failure.ErrGeometry, "crop", "frame size", fmt.Sprintf("frame %d cropped to %dx%d, writer expects %dx%d", res.FramesWritten, b.Dx(), b.Dy(), res.Width, res.Height), nil))
		}
	}
	if decodeErr := set.Err(); decodeErr != nil {
		res.diagnose("input ended early: %v", decodeErr)
		logging.WarnWithContext(logger, "input stopped decoding; treated as end of stream", "decode_error",
			logging.Error(decodeErr),
			logging.String(logging.FieldImpact, "cropped output truncated"),
		)
	}

	res.State = StateDone
	res.Success = true
	logger.Info("crop complete", logging.Int("frames", res.FramesWritten))
	return res, nil
}
