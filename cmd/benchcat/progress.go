package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"benchcat/internal/composite"
	"benchcat/internal/logging"
)

// progressReporter drives a progress bar per output video on terminals and
// falls back to sampled log lines elsewhere.
type progressReporter struct {
	out     io.Writer
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	useBar  bool

	bar    *progressbar.ProgressBar
	output string
}

func newProgressReporter(out io.Writer, logger *slog.Logger, allowBar bool) *progressReporter {
	return &progressReporter{
		out:     out,
		logger:  logging.NewComponentLogger(logger, "progress"),
		sampler: logging.NewProgressSampler(25),
		useBar:  allowBar && isTerminal(out),
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Update implements the composite.Pipeline progress callback.
func (p *progressReporter) Update(update composite.Progress) {
	if !p.useBar {
		if p.sampler.ShouldLog(update.Output, update.Frames, update.Total) {
			p.logger.Info("writing frames",
				logging.String("output", update.Output),
				logging.Int("frames", update.Frames),
				logging.Int("expected_frames", update.Total),
			)
		}
		return
	}
	if p.bar == nil || p.output != update.Output {
		p.Finish()
		p.output = update.Output
		p.bar = p.newBar(update)
	}
	_ = p.bar.Set(update.Frames)
}

func (p *progressReporter) newBar(update composite.Progress) *progressbar.ProgressBar {
	limit := update.Total
	if limit <= 0 {
		limit = -1
	}
	return progressbar.NewOptions(limit,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(filepath.Base(filepath.Dir(update.Output))+"/"+filepath.Base(update.Output)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// Finish clears the active bar, if any.
func (p *progressReporter) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
	p.output = ""
}
