// Package metrics exports workflow outcomes as Prometheus metrics. Values
// cover the current invocation; when a textfile path is configured they are
// written after every run for the node_exporter textfile collector.
package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"benchcat/internal/workflow"
)

const namespace = "benchcat"

// Recorder implements workflow.Sink over a private registry.
type Recorder struct {
	registry *prometheus.Registry
	textfile string

	runs         *prometheus.CounterVec
	items        *prometheus.CounterVec
	frames       *prometheus.CounterVec
	outputBytes  *prometheus.CounterVec
	lastRun      *prometheus.GaugeVec
	lastDuration *prometheus.GaugeVec
}

// New builds a recorder. An empty textfile keeps metrics in memory only.
func New(textfile string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		textfile: textfile,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "runs_total",
			Help:      "Workflow runs completed",
		}, []string{"workflow"}),
		items: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "items_total",
			Help:      "Report items by outcome",
		}, []string{"workflow", "status"}),
		frames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_written_total",
			Help:      "Frames written to output videos",
		}, []string{"workflow"}),
		outputBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      "Bytes of output files produced",
		}, []string{"workflow"}),
		lastRun: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "last_run_timestamp_seconds",
			Help:      "Finish time of the most recent run",
		}, []string{"workflow"}),
		lastDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the most recent run",
		}, []string{"workflow"}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Record folds report into the metrics and refreshes the textfile.
func (r *Recorder) Record(_ context.Context, report workflow.Report) error {
	wf := report.Workflow
	r.runs.WithLabelValues(wf).Inc()
	statuses := []workflow.Status{workflow.StatusSucceeded, workflow.StatusSkipped, workflow.StatusFailed, workflow.StatusUnmatched}
	counts := []int{report.Summary.Succeeded, report.Summary.Skipped, report.Summary.Failed, report.Summary.Unmatched}
	for i, status := range statuses {
		r.items.WithLabelValues(wf, string(status)).Add(float64(counts[i]))
	}
	var written int64
	for _, item := range report.Items {
		if item.Status == workflow.StatusSucceeded {
			written += item.Bytes
		}
	}
	r.frames.WithLabelValues(wf).Add(float64(report.FramesWritten()))
	r.outputBytes.WithLabelValues(wf).Add(float64(written))
	if !report.FinishedAt.IsZero() {
		r.lastRun.WithLabelValues(wf).Set(float64(report.FinishedAt.Unix()))
	}
	r.lastDuration.WithLabelValues(wf).Set(report.Duration().Seconds())

	if r.textfile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.textfile), 0o755); err != nil {
		return fmt.Errorf("metrics: create textfile dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(r.textfile, r.registry); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}
