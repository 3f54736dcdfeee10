package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"benchcat/internal/failure"
	"benchcat/internal/fileutil"
)

// dl3dvRenames maps raw method outputs to canonical names, in processing order.
var dl3dvRenames = []struct{ from, to string }{
	{"gt_4_video.mp4", "GroundTruth.mp4"},
	{"output_gwtf.mp4", "GWTF.mp4"},
	{"sample.mp4", "Ours.mp4"},
	{"warped_4_video.mp4", "Warped.mp4"},
}

// RenameDL3DV renames the raw outputs in every subdirectory of root to their
// canonical names. A source that is absent is skipped.
func (r *Runner) RenameDL3DV(ctx context.Context, root string) (Report, error) {
	return r.perDirectory(ctx, NameRenameDL3DV, root, func(_ context.Context, rn *run, dir string) {
		for _, mapping := range dl3dvRenames {
			src := filepath.Join(dir, mapping.from)
			dst := filepath.Join(dir, mapping.to)
			item := ItemResult{Item: rn.itemName(src), Action: "rename", Sources: []string{src}, Output: dst}
			if !fileutil.Exists(src) {
				rn.skip(item, "file not found")
				continue
			}
			if err := fileutil.MoveFile(src, dst); err != nil {
				rn.fail(item, failure.Wrap(nil, "rename", "move", fmt.Sprintf("%s -> %s", mapping.from, mapping.to), err))
				continue
			}
			rn.succeed(item)
		}
	})
}

// FlattenMCBench replaces every "<name>.mp4" directory holding exactly one
// mp4 with that file. Directories with no or several mp4 files fail and are
// left untouched.
func (r *Runner) FlattenMCBench(ctx context.Context, root string) (Report, error) {
	return r.perDirectory(ctx, NameFlattenMCBench, root, func(_ context.Context, rn *run, dir string) {
		candidates, err := mp4Directories(dir)
		if err != nil {
			rn.fail(ItemResult{Item: rn.itemName(dir), Action: "flatten"}, err)
			return
		}
		if len(candidates) == 0 {
			rn.skip(ItemResult{Item: rn.itemName(dir), Action: "flatten"}, "no mp4 directories to flatten")
			return
		}
		for _, candidate := range candidates {
			item := ItemResult{Item: rn.itemName(candidate), Action: "flatten", Output: candidate}
			inner, err := singleMP4(candidate)
			if err != nil {
				rn.fail(item, err)
				continue
			}
			item.Sources = []string{inner}
			if err := flatten(candidate, inner); err != nil {
				rn.fail(item, err)
				continue
			}
			rn.succeed(item)
		}
	})
}

// mp4Directories returns the entries of dir named *.mp4 that are directories.
func mp4Directories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, failure.Wrap(nil, "flatten", "read directory", dir, err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), ".mp4") {
			out = append(out, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func singleMP4(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.mp4"))
	if err != nil {
		return "", failure.Wrap(nil, "flatten", "scan", dir, err)
	}
	switch len(matches) {
	case 0:
		return "", failure.Wrap(failure.ErrLayout, "flatten", "scan", "no mp4 files found", nil)
	case 1:
		return matches[0], nil
	default:
		return "", failure.Wrap(failure.ErrLayout, "flatten", "scan", fmt.Sprintf("multiple mp4 files found (%d)", len(matches)), nil)
	}
}

// flatten moves inner next to dir under a temporary name, removes dir and
// takes its name. When dir cannot be removed the file is moved back.
func flatten(dir, inner string) error {
	temp := filepath.Join(filepath.Dir(dir), "temp_"+filepath.Base(dir))
	if fileutil.Exists(temp) {
		return failure.Wrap(failure.ErrLayout, "flatten", "stage", fmt.Sprintf("%s already exists", filepath.Base(temp)), nil)
	}
	if err := fileutil.MoveFile(inner, temp); err != nil {
		return failure.Wrap(nil, "flatten", "stage", filepath.Base(inner), err)
	}
	if err := os.Remove(dir); err != nil {
		if restoreErr := fileutil.MoveFile(temp, inner); restoreErr != nil {
			return failure.Wrap(nil, "flatten", "remove directory", fmt.Sprintf("%s (file left at %s)", filepath.Base(dir), temp), err)
		}
		return failure.Wrap(nil, "flatten", "remove directory", filepath.Base(dir), err)
	}
	if err := fileutil.MoveFile(temp, dir); err != nil {
		return failure.Wrap(nil, "flatten", "rename", fmt.Sprintf("%s (file left at %s)", filepath.Base(dir), temp), err)
	}
	return nil
}
