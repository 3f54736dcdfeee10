package workflow

import (
	"context"
	"path/filepath"
	"strings"

	"benchcat/internal/composite"
	"benchcat/internal/failure"
	"benchcat/internal/fileutil"
)

const concatenatedName = "concatenated.mp4"

// MCBenchOrder is the left-to-right method order of MC-Bench comparisons.
var MCBenchOrder = []string{"Warped.mp4", "Ours_SVD.mp4", "Drag_Anything.mp4", "SGI2V.mp4", motionProCroppedName}

// DL3DVOrder is the left-to-right method order of DL3DV comparisons.
var DL3DVOrder = []string{"Warped.mp4", "Ours.mp4", "GWTF.mp4", "GroundTruth.mp4"}

// ConcatMCBench builds concatenated.mp4 in every subdirectory of root.
func (r *Runner) ConcatMCBench(ctx context.Context, root string) (Report, error) {
	return r.concatDirectories(ctx, NameConcatMCBench, root, MCBenchOrder)
}

// ConcatDL3DV builds concatenated.mp4 in every subdirectory of root.
func (r *Runner) ConcatDL3DV(ctx context.Context, root string) (Report, error) {
	return r.concatDirectories(ctx, NameConcatDL3DV, root, DL3DVOrder)
}

func (r *Runner) concatDirectories(ctx context.Context, workflow, root string, order []string) (Report, error) {
	return r.perDirectory(ctx, workflow, root, func(ctx context.Context, rn *run, dir string) {
		inputs := make([]string, 0, len(order))
		var missing []string
		for _, name := range order {
			path := filepath.Join(dir, name)
			if !fileutil.IsRegularFile(path) {
				missing = append(missing, name)
				continue
			}
			inputs = append(inputs, path)
		}
		item := ItemResult{Item: rn.itemName(dir), Action: "concat", Sources: inputs, Output: filepath.Join(dir, concatenatedName)}
		if len(missing) > 0 {
			rn.fail(item, failure.Wrap(failure.ErrNotFound, "concat", "inputs", "missing videos: "+strings.Join(missing, ", "), nil))
			return
		}
		rn.concat(ctx, item, false)
	})
}

// ConcatFiles concatenates inputs in the given order into output.
func (r *Runner) ConcatFiles(ctx context.Context, inputs []string, output string, slowdown bool) (Report, error) {
	rn, ctx, err := r.begin(ctx, NameConcatFiles, filepath.Dir(output))
	if err != nil {
		return Report{}, err
	}
	item := ItemResult{Item: filepath.Base(output), Action: "concat", Sources: inputs, Output: output}
	var missing []string
	for _, in := range inputs {
		if !fileutil.IsRegularFile(in) {
			missing = append(missing, in)
		}
	}
	switch {
	case len(inputs) == 0:
		rn.fail(item, failure.Wrap(failure.ErrOpen, "concat", "inputs", "no input videos given", nil))
	case len(missing) > 0:
		rn.fail(item, failure.Wrap(failure.ErrNotFound, "concat", "inputs", "missing videos: "+strings.Join(missing, ", "), nil))
	default:
		rn.concat(ctx, item, slowdown)
	}
	return rn.finish(ctx)
}

func (rn *run) concat(ctx context.Context, item ItemResult, slowdown bool) {
	if rn.runner.Pipeline == nil {
		rn.fail(item, failure.Wrap(failure.ErrWrite, "concat", "pipeline", "no pipeline configured", nil))
		return
	}
	res, err := rn.runner.Pipeline.Run(ctx, composite.Request{
		Inputs:        item.Sources,
		Output:        item.Output,
		TargetHeight:  rn.runner.Settings.TargetHeight,
		Slowdown:      slowdown,
		ProgressEvery: rn.runner.Settings.ConcatProgressEvery,
	})
	item.Frames, item.Width, item.Height = res.FramesWritten, res.Width, res.Height
	item.Diagnostics = res.Diagnostics
	if err != nil {
		rn.fail(item, err)
		return
	}
	rn.succeed(item)
}
