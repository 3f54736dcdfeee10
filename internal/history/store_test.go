package history_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"benchcat/internal/failure"
	"benchcat/internal/history"
	"benchcat/internal/testsupport"
	"benchcat/internal/workflow"
)

func sampleReport(id string, started time.Time) workflow.Report {
	r := workflow.Report{
		RunID:      id,
		Workflow:   workflow.NameConcatDL3DV,
		Roots:      []string{"/data/DL3DV"},
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Items: []workflow.ItemResult{
			{Item: "DL3DV/a", Action: "concat", Status: workflow.StatusSucceeded, Sources: []string{"/data/DL3DV/a/Warped.mp4", "/data/DL3DV/a/Ours.mp4"}, Output: "/data/DL3DV/a/concatenated.mp4", Frames: 49, Width: 1706, Height: 320, Bytes: 1 << 20},
			{Item: "DL3DV/b", Action: "concat", Status: workflow.StatusFailed, ErrorCode: failure.CodeNotFound, Error: "missing videos: GWTF.mp4"},
			{Item: "DL3DV/c", Action: "concat", Status: workflow.StatusSucceeded, Frames: 12, Diagnostics: []string{"input lengths differ (12 to 14 frames); output stops at the shortest"}},
		},
	}
	r.Finalize()
	return r
}

func TestRecordAndGetRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	started := time.Date(2026, 4, 2, 9, 30, 0, 123456789, time.UTC)
	report := sampleReport("0f8fad5b-d9cb-469f-a165-70867728950e", started)
	if err := store.Record(ctx, report); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Get(ctx, report.RunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.StartedAt.Equal(started) || got.Summary != report.Summary || got.Workflow != report.Workflow {
		t.Fatalf("run mismatch: %+v", got)
	}
	if len(got.Items) != 3 {
		t.Fatalf("items = %d", len(got.Items))
	}
	for i, want := range report.Items {
		have := got.Items[i]
		if have.Item != want.Item || have.Status != want.Status || have.Frames != want.Frames || have.Error != want.Error {
			t.Fatalf("item %d = %+v, want %+v", i, have, want)
		}
	}
	if len(got.Items[0].Sources) != 2 || got.Items[0].Bytes != 1<<20 || got.Items[0].Width != 1706 {
		t.Fatalf("item 0 details lost: %+v", got.Items[0])
	}
	if len(got.Items[2].Diagnostics) != 1 || got.Items[1].Sources != nil {
		t.Fatalf("list columns mismatch: %+v / %+v", got.Items[2], got.Items[1])
	}
}

func TestGetByPrefix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()
	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"abc-1", "abd-2"} {
		if err := store.Record(ctx, sampleReport(id, now)); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	got, err := store.Get(ctx, "abc")
	if err != nil || got.RunID != "abc-1" {
		t.Fatalf("Get(abc) = %v, %v", got, err)
	}
	if _, err := store.Get(ctx, "ab"); err == nil {
		t.Fatal("expected ambiguous prefix error")
	}
	if _, err := store.Get(ctx, "zzz"); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("Get(zzz) err = %v", err)
	}
	if _, err := store.Get(ctx, "a_"); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("wildcards must be literal, err = %v", err)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		if err := store.Record(ctx, sampleReport(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "r3" || runs[1].RunID != "r2" {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Duration() != 90*time.Second || runs[0].Summary.Failed != 1 {
		t.Fatalf("run summary = %+v", runs[0])
	}
	all, err := store.List(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("List(0) = %d, %v", len(all), err)
	}
}

func TestRecordReplacesExistingRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()
	report := sampleReport("same", time.Now())
	if err := store.Record(ctx, report); err != nil {
		t.Fatalf("Record: %v", err)
	}
	report.Items = report.Items[:1]
	report.Finalize()
	if err := store.Record(ctx, report); err != nil {
		t.Fatalf("Record again: %v", err)
	}
	got, err := store.Get(ctx, "same")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Items) != 1 || got.Summary.Succeeded != 1 || got.Summary.Failed != 0 {
		t.Fatalf("got %+v", got)
	}
}

func TestPrune(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := store.Record(ctx, sampleReport("old", old)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, sampleReport("new", recent)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	removed, err := store.Prune(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d", removed)
	}
	if _, err := store.Get(ctx, "old"); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("old run still present: %v", err)
	}
}

func TestRecordRequiresRunID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	if err := store.Record(context.Background(), workflow.Report{}); err == nil {
		t.Fatal("expected error for report without run id")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	path := store.Path()
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := history.OpenPath(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("OpenPath err = %v, want ErrSchemaMismatch", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database should be left in place: %v", err)
	}
}

func TestStoreIsWorkflowSink(t *testing.T) {
	var _ workflow.Sink = (*history.Store)(nil)
}
