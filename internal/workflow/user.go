package workflow

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"benchcat/internal/failure"
	"benchcat/internal/logging"
	"benchcat/internal/pairing"
)

// ConcatUser pairs the warped and ours renders in the camera-control and
// object-control directories and writes "<key>_concatenated.mp4" for each
// pair. Camera pairs are slowed down when the setting is on. A directory
// whose files cannot be paired unambiguously fails on its own; the other
// directory still runs.
func (r *Runner) ConcatUser(ctx context.Context, cameraDir, objectDir string) (Report, error) {
	rn, ctx, err := r.begin(ctx, NameConcatUser, cameraDir, objectDir)
	if err != nil {
		return Report{}, err
	}
	dirs := []struct {
		path     string
		slowdown bool
	}{
		{cameraDir, r.Settings.UserCameraSlowdown},
		{objectDir, false},
	}
	seen := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		if ctx.Err() != nil {
			break
		}
		abs, err := filepath.Abs(d.path)
		if err != nil {
			abs = d.path
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		rn.concatUserDir(ctx, abs, d.slowdown)
	}
	return rn.finish(ctx)
}

func (rn *run) concatUserDir(ctx context.Context, dir string, slowdown bool) {
	dirItem := ItemResult{Item: rn.itemName(dir), Action: "pair"}
	videos, err := userVideos(dir)
	if err != nil {
		rn.fail(dirItem, err)
		return
	}
	result, err := pairing.Match(videos)
	if err != nil {
		dirItem.Sources = videos
		rn.fail(dirItem, err)
		return
	}
	if len(result.Pairs) == 0 {
		logging.WarnWithContext(rn.logger.With(logging.String(logging.FieldItem, dirItem.Item)), "no video pairs found", "no_pairs",
			logging.Int("videos", len(videos)),
			logging.String(logging.FieldErrorHint, "name files with a shared prefix and an 'our' or 'warped' tag"),
		)
	}

	for _, pair := range result.Pairs {
		if ctx.Err() != nil {
			return
		}
		output := filepath.Join(dir, pair.Key+"_"+concatenatedName)
		item := ItemResult{Item: rn.itemName(dir) + "/" + pair.Key, Action: "concat", Sources: pair.Inputs(), Output: output}
		rn.concat(ctx, item, slowdown)
	}

	inIncomplete := make(map[string]struct{})
	for _, inc := range result.Incomplete {
		for _, f := range inc.Files {
			inIncomplete[f] = struct{}{}
		}
		rn.record(ItemResult{
			Item:    rn.itemName(dir) + "/" + inc.Key,
			Action:  "pair",
			Status:  StatusUnmatched,
			Sources: inc.Files,
			Message: "missing " + inc.MissingString(),
		})
	}
	for _, path := range result.Unmatched {
		if _, ok := inIncomplete[path]; ok {
			continue
		}
		rn.record(ItemResult{
			Item:    rn.itemName(path),
			Action:  "pair",
			Status:  StatusUnmatched,
			Sources: []string{path},
			Message: "superseded by another file with the same key and role",
		})
	}
}

// userVideos lists the *.mp4 files of dir that are not concatenation outputs,
// in lexical order.
func userVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, failure.Wrap(failure.ErrNotFound, "pair", "read directory", dir, err)
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasSuffix(name, ".mp4") || strings.Contains(name, "concatenated") {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	sort.Strings(out)
	return out, nil
}
