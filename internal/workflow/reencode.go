package workflow

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"benchcat/internal/failure"
	"benchcat/internal/fileutil"
)

const (
	reencodeSourceSuffix = "concatenated.mp4"
	reencodeOutputSuffix = "concatenated_fixed.mp4"
)

// ReencodeOutput returns the playback copy path for a concatenated video.
func ReencodeOutput(path string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, strings.TrimSuffix(name, reencodeSourceSuffix)+reencodeOutputSuffix)
}

// Reencode transcodes every *concatenated.mp4 below root into a
// *concatenated_fixed.mp4 playback copy. Existing copies are skipped unless
// overwrite is set. Finding nothing is a successful empty run.
func (r *Runner) Reencode(ctx context.Context, root string) (Report, error) {
	rn, ctx, err := r.begin(ctx, NameReencode, root)
	if err != nil {
		return Report{}, err
	}
	var sources []string
	walkErr := filepath.WalkDir(rn.report.Roots[0], func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			rn.fail(ItemResult{Item: rn.itemName(path), Action: "scan"}, failure.Wrap(nil, "reencode", "walk", path, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), reencodeSourceSuffix) {
			sources = append(sources, path)
		}
		return nil
	})
	if walkErr != nil {
		rn.fail(ItemResult{Item: rn.itemName(root), Action: "scan"}, failure.Wrap(nil, "reencode", "walk", root, walkErr))
	}
	if len(sources) == 0 {
		rn.logger.Info("no concatenated videos found")
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		rn.reencode(ctx, src)
	}
	return rn.finish(ctx)
}

func (rn *run) reencode(ctx context.Context, src string) {
	output := ReencodeOutput(src)
	item := ItemResult{Item: rn.itemName(src), Action: "reencode", Sources: []string{src}, Output: output}
	if fileutil.Exists(output) {
		if !rn.runner.Settings.Overwrite {
			rn.skip(item, "output already exists")
			return
		}
		if err := os.Remove(output); err != nil {
			rn.fail(item, failure.Wrap(failure.ErrWrite, "reencode", "remove existing output", output, err))
			return
		}
	}
	if rn.runner.Transcoder == nil {
		rn.fail(item, failure.Wrap(failure.ErrExternalTool, "reencode", "transcode", "no transcoder configured", nil))
		return
	}
	if err := rn.runner.Transcoder.Reencode(ctx, src, output); err != nil {
		rn.fail(item, err)
		return
	}
	rn.succeed(item)
}
