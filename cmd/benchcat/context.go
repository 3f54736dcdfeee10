package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"benchcat/internal/composite"
	"benchcat/internal/config"
	"benchcat/internal/history"
	"benchcat/internal/logging"
	"benchcat/internal/media/ffmpeg"
	"benchcat/internal/metrics"
	"benchcat/internal/workflow"
)

type commandContext struct {
	configFlag   *string
	jsonFlag     *bool
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		jsonFlag:     jsonFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
				if _, err := logging.ParseLevel(level); err != nil {
					c.configErr = err
					return
				}
				cfg.Logging.Level = strings.ToLower(level)
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) logger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, w)
}

// session is everything a batch command needs; close releases the history
// database.
type session struct {
	runner *workflow.Runner
	close  func()
}

func (c *commandContext) newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	pipeline := &composite.Pipeline{
		Opener:  ffmpeg.NewDecoder(cfg.FFmpeg.FFmpegBinary, cfg.FFmpeg.FFprobeBinary),
		Creator: ffmpeg.NewEncoder(cfg.FFmpeg.FFmpegBinary, cfg.FFmpeg.VideoCodec, cfg.FFmpeg.CodecTag, cfg.FFmpeg.Quality),
		Logger:  logger,
	}
	progress := newProgressReporter(cmd.ErrOrStderr(), logger, !c.jsonOutput())
	pipeline.Progress = progress.Update

	var sinks []workflow.Sink
	closers := []func(){progress.Finish}
	if cfg.History.Enabled {
		store, err := history.Open(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "run history unavailable", "history_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.state_dir or set history.enabled = false"),
				logging.String(logging.FieldImpact, "this run will not be recorded"),
			)
		} else {
			sinks = append(sinks, store)
			closers = append(closers, func() { _ = store.Close() })
		}
	}
	if textfile := strings.TrimSpace(cfg.Metrics.Textfile); textfile != "" {
		sinks = append(sinks, metrics.New(textfile))
	}

	runner := workflow.NewRunner(cfg, logger, pipeline, ffmpeg.NewTranscoder(cfg.FFmpeg.FFmpegBinary), sinks...)
	return &session{
		runner: runner,
		close: func() {
			for _, fn := range closers {
				fn()
			}
		},
	}, nil
}

// runWorkflow opens a session, runs fn and renders its report.
func (c *commandContext) runWorkflow(cmd *cobra.Command, fn func(*workflow.Runner) (workflow.Report, error)) error {
	s, err := c.newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	return c.finishWorkflow(cmd, s.runner, fn)
}

func (c *commandContext) finishWorkflow(cmd *cobra.Command, runner *workflow.Runner, fn func(*workflow.Runner) (workflow.Report, error)) error {
	report, runErr := fn(runner)
	if report.RunID == "" {
		return runErr
	}
	if err := c.renderReport(cmd, report); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if !report.OK() {
		return errItemsFailed{failed: report.Summary.Failed}
	}
	return nil
}

type errItemsFailed struct {
	failed int
}

func (e errItemsFailed) Error() string {
	if e.failed == 1 {
		return "1 item failed"
	}
	return fmt.Sprintf("%d items failed", e.failed)
}

func isItemsFailed(err error) bool {
	var target errItemsFailed
	return errors.As(err, &target)
}

// datasetDir picks the directory argument, then the configured path, then the
// conventional name relative to the working directory.
func datasetDir(args []string, index int, configured, fallback string) string {
	if index < len(args) && strings.TrimSpace(args[index]) != "" {
		if expanded, err := config.ExpandPath(args[index]); err == nil {
			return expanded
		}
		return args[index]
	}
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	return fallback
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
