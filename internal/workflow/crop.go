package workflow

import (
	"context"
	"path/filepath"

	"benchcat/internal/composite"
	"benchcat/internal/failure"
	"benchcat/internal/fileutil"
	"benchcat/internal/frame"
)

const (
	motionProName        = "MotionPro.mp4"
	motionProCroppedName = "MotionPro_cropped.mp4"
)

// CropMotionPro crops MotionPro.mp4 in every subdirectory of root to the
// single MotionPro panel, writing MotionPro_cropped.mp4 beside it.
func (r *Runner) CropMotionPro(ctx context.Context, root string) (Report, error) {
	return r.perDirectory(ctx, NameCropMotionPro, root, func(ctx context.Context, rn *run, dir string) {
		src := filepath.Join(dir, motionProName)
		item := ItemResult{Item: rn.itemName(src), Action: "crop", Sources: []string{src}, Output: filepath.Join(dir, motionProCroppedName)}
		if !fileutil.IsRegularFile(src) {
			rn.skip(item, motionProName+" not found")
			return
		}
		rn.crop(ctx, item, nil)
	})
}

// CropFile crops a single video with an explicit box; nil selects the
// MotionPro box from the source height.
func (r *Runner) CropFile(ctx context.Context, input, output string, spec *frame.CropSpec) (Report, error) {
	rn, ctx, err := r.begin(ctx, NameCropFile, filepath.Dir(output))
	if err != nil {
		return Report{}, err
	}
	item := ItemResult{Item: filepath.Base(input), Action: "crop", Sources: []string{input}, Output: output}
	if !fileutil.IsRegularFile(input) {
		rn.fail(item, failure.Wrap(failure.ErrNotFound, "crop", "input", input, nil))
	} else {
		rn.crop(ctx, item, spec)
	}
	return rn.finish(ctx)
}

func (rn *run) crop(ctx context.Context, item ItemResult, spec *frame.CropSpec) {
	if rn.runner.Pipeline == nil {
		rn.fail(item, failure.Wrap(failure.ErrWrite, "crop", "pipeline", "no pipeline configured", nil))
		return
	}
	res, err := rn.runner.Pipeline.CropVideo(ctx, composite.CropRequest{
		Input:         item.Sources[0],
		Output:        item.Output,
		Spec:          spec,
		ProgressEvery: rn.runner.Settings.CropProgressEvery,
	})
	item.Frames, item.Width, item.Height = res.FramesWritten, res.Width, res.Height
	item.Diagnostics = res.Diagnostics
	if err != nil {
		rn.fail(item, err)
		return
	}
	rn.succeed(item)
}
