package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"benchcat/internal/history"
	"benchcat/internal/workflow"
)

func TestRenameDL3DVJSONAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	scene := filepath.Join(env.baseDir, "DL3DV", "scene1")
	touch(t, filepath.Join(scene, "sample.mp4"))
	touch(t, filepath.Join(scene, "gt_4_video.mp4"))

	out, _, err := runCLI(t, []string{"--json", "rename", "dl3dv"}, env.configPath)
	if err != nil {
		t.Fatalf("rename dl3dv: %v", err)
	}
	var report workflow.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Workflow != workflow.NameRenameDL3DV {
		t.Fatalf("workflow = %q", report.Workflow)
	}
	if report.Summary.Succeeded != 2 || report.Summary.Skipped != 2 || report.Summary.Failed != 0 {
		t.Fatalf("summary = %+v", report.Summary)
	}
	for _, name := range []string{"Ours.mp4", "GroundTruth.mp4"} {
		if _, err := os.Stat(filepath.Join(scene, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	out, _, err = runCLI(t, []string{"--json", "history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []history.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].RunID != report.RunID {
		t.Fatalf("runs = %+v, want run %s", runs, report.RunID)
	}

	out, _, err = runCLI(t, []string{"history", "show", report.RunID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "rename-dl3dv: 2 succeeded, 2 skipped, 0 failed")
	requireContains(t, out, "file not found")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	requireContains(t, out, report.RunID[:8])
}

func TestConcatDL3DVItemFailureIsReported(t *testing.T) {
	env := setupCLITestEnv(t)
	touch(t, filepath.Join(env.baseDir, "DL3DV", "scene1", "Warped.mp4"))

	out, _, err := runCLI(t, []string{"concat", "dl3dv"}, env.configPath)
	if err == nil {
		t.Fatal("expected item failure")
	}
	if !isItemsFailed(err) {
		t.Fatalf("expected items-failed error, got %v", err)
	}
	if err.Error() != "1 item failed" {
		t.Fatalf("error = %q", err.Error())
	}
	requireContains(t, out, "not_found")
	requireContains(t, out, "missing videos: Ours.mp4, GWTF.mp4, GroundTruth.mp4")
}

func TestMissingRootIsCommandError(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"rename", "mcbench", filepath.Join(env.baseDir, "absent")}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	if isItemsFailed(err) {
		t.Fatalf("missing root should not be an item failure: %v", err)
	}
}

func TestConcatFilesRequiresOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"concat", "files", "a.mp4", "b.mp4"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "output") {
		t.Fatalf("expected missing output error, got %v", err)
	}
}

func TestDoctorWithStubbedTools(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "ffmpeg version 7.1-test")
	requireContains(t, out, "libx264")
	if strings.Contains(out, "FAIL") {
		t.Fatalf("unexpected failure in doctor output:\n%s", out)
	}
}

func TestDoctorFailsWithoutEncoder(t *testing.T) {
	env := setupCLITestEnv(t)
	bin := filepath.Join(env.baseDir, "bin", "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\necho 'ffmpeg version test'\n"), 0o755); err != nil {
		t.Fatalf("rewrite stub: %v", err)
	}

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatalf("expected doctor failure:\n%s", out)
	}
	requireContains(t, out, "FAIL")
}
