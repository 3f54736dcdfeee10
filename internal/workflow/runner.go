package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"benchcat/internal/composite"
	"benchcat/internal/config"
	"benchcat/internal/failure"
	"benchcat/internal/fileutil"
	"benchcat/internal/logging"
)

// Transcoder re-encodes one finished comparison video.
type Transcoder interface {
	Reencode(ctx context.Context, input, output string) error
}

// Sink receives every finished report. Sink errors are logged and never
// change the outcome of the run.
type Sink interface {
	Record(ctx context.Context, report Report) error
}

// Settings are the per-run knobs taken from configuration.
type Settings struct {
	TargetHeight        int
	ConcatProgressEvery int
	CropProgressEvery   int
	UserCameraSlowdown  bool
	Overwrite           bool
}

// SettingsFromConfig extracts workflow settings from cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		return Settings{TargetHeight: composite.DefaultTargetHeight, UserCameraSlowdown: true}
	}
	return Settings{
		TargetHeight:        cfg.Concat.TargetHeight,
		ConcatProgressEvery: cfg.Concat.ProgressEvery,
		CropProgressEvery:   cfg.Crop.ProgressEvery,
		UserCameraSlowdown:  cfg.Concat.UserCameraSlowdown,
		Overwrite:           cfg.Reencode.Overwrite,
	}
}

// Runner executes workflows against one pipeline, transcoder and sink set.
type Runner struct {
	Pipeline   *composite.Pipeline
	Transcoder Transcoder
	Sinks      []Sink
	Logger     *slog.Logger
	Settings   Settings

	Now   func() time.Time
	NewID func() string
}

// NewRunner wires a runner from configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger, pipeline *composite.Pipeline, transcoder Transcoder, sinks ...Sink) *Runner {
	return &Runner{
		Pipeline:   pipeline,
		Transcoder: transcoder,
		Sinks:      sinks,
		Logger:     logger,
		Settings:   SettingsFromConfig(cfg),
	}
}

// run is the state of one workflow execution.
type run struct {
	runner *Runner
	report *Report
	logger *slog.Logger
	locks  []*fileutil.DirLock
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}

// begin checks and locks every root. Duplicate roots are locked once.
func (r *Runner) begin(ctx context.Context, workflow string, roots ...string) (*run, context.Context, error) {
	cleaned := make([]string, 0, len(roots))
	seen := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, ctx, failure.Wrap(failure.ErrNotFound, "workflow", "resolve root", root, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, ctx, failure.Wrap(failure.ErrNotFound, "workflow", "open root", fmt.Sprintf("directory %q does not exist", root), err)
		}
		if !info.IsDir() {
			return nil, ctx, failure.Wrap(failure.ErrNotFound, "workflow", "open root", fmt.Sprintf("%q is not a directory", root), nil)
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		cleaned = append(cleaned, abs)
	}

	rn := &run{runner: r, report: &Report{
		RunID:     r.newID(),
		Workflow:  workflow,
		Roots:     cleaned,
		StartedAt: r.now(),
	}}
	for _, root := range cleaned {
		lock, err := fileutil.LockDir(root)
		if err != nil {
			rn.unlock()
			return nil, ctx, err
		}
		rn.locks = append(rn.locks, lock)
	}

	ctx = logging.WithRunID(ctx, rn.report.RunID)
	base := r.Logger
	if base == nil {
		base = logging.NewNop()
	}
	rn.logger = logging.WithContext(ctx, logging.NewComponentLogger(base, "workflow")).With(logging.String(logging.FieldWorkflow, workflow))
	rn.logger.Info("workflow started", logging.Any("roots", cleaned))
	return rn, ctx, nil
}

func (rn *run) unlock() {
	for _, lock := range rn.locks {
		if err := lock.Unlock(); err != nil && rn.logger != nil {
			rn.logger.Debug("release lock failed", logging.String("lock", lock.Path()), logging.Error(err))
		}
	}
	rn.locks = nil
}

// finish releases locks, finalizes the report and hands it to every sink.
// A cancelled context is returned alongside the partial report.
func (rn *run) finish(ctx context.Context) (Report, error) {
	rn.unlock()
	rn.report.FinishedAt = rn.runner.now()
	rn.report.Finalize()
	report := *rn.report

	// Sinks still see cancelled runs.
	sinkCtx := context.WithoutCancel(ctx)
	for _, sink := range rn.runner.Sinks {
		if sink == nil {
			continue
		}
		if err := sink.Record(sinkCtx, report); err != nil {
			logging.WarnWithContext(rn.logger, "failed to record run", "sink_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the state directory and metrics textfile path"),
			)
		}
	}

	rn.logger.Info("workflow finished",
		logging.Int("succeeded", report.Summary.Succeeded),
		logging.Int("skipped", report.Summary.Skipped),
		logging.Int("failed", report.Summary.Failed),
		logging.Int("unmatched", report.Summary.Unmatched),
		logging.Duration("elapsed", report.Duration()),
	)
	if err := ctx.Err(); err != nil {
		logging.ErrorWithContext(rn.logger, "workflow interrupted", "workflow_cancelled",
			logging.Error(err),
			logging.Int("items_recorded", len(report.Items)),
			logging.String(logging.FieldImpact, "remaining directories were not processed"),
		)
		return report, err
	}
	return report, nil
}

// record appends item to the report and logs its outcome.
func (rn *run) record(item ItemResult) {
	rn.report.add(item)
	logger := rn.logger.With(logging.String(logging.FieldItem, item.Item))
	switch item.Status {
	case StatusFailed:
		logging.WarnWithContext(logger, item.Action+" failed", "item_failed",
			logging.String("error_code", item.ErrorCode),
			logging.String("error", item.Error),
			logging.String(logging.FieldImpact, "item left unprocessed; the batch continues"),
		)
	case StatusSkipped, StatusUnmatched:
		logger.Info(item.Action+" "+string(item.Status), logging.String("reason", item.Message))
	default:
		logger.Info(item.Action+" done",
			logging.String("output", item.Output),
			logging.Int("frames", item.Frames),
			logging.Int64("bytes", item.Bytes),
		)
	}
}

func (rn *run) fail(item ItemResult, err error) {
	item.Status = StatusFailed
	item.ErrorCode = failure.Code(err)
	item.Error = err.Error()
	rn.record(item)
}

func (rn *run) skip(item ItemResult, message string) {
	item.Status = StatusSkipped
	item.Message = message
	rn.record(item)
}

func (rn *run) succeed(item ItemResult) {
	item.Status = StatusSucceeded
	if item.Output != "" {
		if info, err := os.Stat(item.Output); err == nil {
			item.Bytes = info.Size()
		}
	}
	rn.record(item)
}

// subdirectories lists the immediate subdirectories of root in lexical order.
func subdirectories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, failure.Wrap(failure.ErrNotFound, "workflow", "list subdirectories", root, err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}
	if len(dirs) == 0 {
		return nil, failure.Wrap(failure.ErrNotFound, "workflow", "list subdirectories", fmt.Sprintf("no subdirectories found in %q", root), nil)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// perDirectory runs fn for each subdirectory of root, stopping early when ctx
// is cancelled.
func (r *Runner) perDirectory(ctx context.Context, workflow, root string, fn func(ctx context.Context, rn *run, dir string)) (Report, error) {
	rn, ctx, err := r.begin(ctx, workflow, root)
	if err != nil {
		return Report{}, err
	}
	dirs, err := subdirectories(rn.report.Roots[0])
	if err != nil {
		rn.unlock()
		return Report{}, err
	}
	rn.logger.Info("found subdirectories", logging.Int("count", len(dirs)))
	for _, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		fn(ctx, rn, dir)
	}
	return rn.finish(ctx)
}

// itemName renders path relative to the run's roots for reports.
func (rn *run) itemName(path string) string {
	for _, root := range rn.report.Roots {
		rel, err := filepath.Rel(filepath.Dir(root), path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(rel)
		}
	}
	return path
}
