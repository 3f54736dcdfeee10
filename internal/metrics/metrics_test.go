package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"benchcat/internal/workflow"
)

func report() workflow.Report {
	started := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	r := workflow.Report{
		RunID:      "r",
		Workflow:   workflow.NameConcatMCBench,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Minute),
		Items: []workflow.ItemResult{
			{Status: workflow.StatusSucceeded, Frames: 40, Bytes: 1000},
			{Status: workflow.StatusSucceeded, Frames: 10, Bytes: 500},
			{Status: workflow.StatusFailed, Frames: 3},
			{Status: workflow.StatusSkipped},
		},
	}
	r.Finalize()
	return r
}

func TestRecordUpdatesCounters(t *testing.T) {
	rec := New("")
	if err := rec.Record(context.Background(), report()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := rec.Record(context.Background(), report()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	wf := workflow.NameConcatMCBench

	if got := testutil.ToFloat64(rec.runs.WithLabelValues(wf)); got != 2 {
		t.Errorf("runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rec.items.WithLabelValues(wf, "succeeded")); got != 4 {
		t.Errorf("succeeded = %v, want 4", got)
	}
	if got := testutil.ToFloat64(rec.items.WithLabelValues(wf, "failed")); got != 2 {
		t.Errorf("failed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rec.frames.WithLabelValues(wf)); got != 106 {
		t.Errorf("frames = %v, want 106", got)
	}
	if got := testutil.ToFloat64(rec.outputBytes.WithLabelValues(wf)); got != 3000 {
		t.Errorf("bytes = %v, want 3000", got)
	}
	if got := testutil.ToFloat64(rec.lastDuration.WithLabelValues(wf)); got != 120 {
		t.Errorf("duration = %v, want 120", got)
	}
}

func TestRecordWritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collector", "benchcat.prom")
	rec := New(path)
	if err := rec.Record(context.Background(), report()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`benchcat_workflow_runs_total{workflow="concat-mcbench"} 1`,
		`benchcat_frames_written_total{workflow="concat-mcbench"} 53`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("textfile missing %q:\n%s", want, text)
		}
	}
}

func TestRecorderIsWorkflowSink(t *testing.T) {
	var _ workflow.Sink = New("")
}
