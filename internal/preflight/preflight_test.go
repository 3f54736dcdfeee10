package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"benchcat/internal/config"
	"benchcat/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAllSkipsUnsetDatasets(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = base
	cfg.Paths.DL3DVDir = filepath.Join(base, "missing")

	results := RunAll(context.Background(), &cfg)
	if len(results) != 2 {
		t.Fatalf("expected state + DL3DV results, got %+v", results)
	}
	if !results[0].Passed {
		t.Fatalf("state dir should pass: %+v", results[0])
	}
	if results[1].Passed || !results[1].Optional {
		t.Fatalf("missing dataset should fail optionally: %+v", results[1])
	}
	if !AllPassed(results) {
		t.Fatal("optional failures must not fail the overall check")
	}

	cfg.Paths.StateDir = filepath.Join(base, "nope")
	if AllPassed(RunAll(context.Background(), &cfg)) {
		t.Fatal("missing state dir should fail")
	}
}

func TestCheckEncodersWithFakeFFmpeg(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\ncat <<'OUT'\n V....D mpeg4                MPEG-4 part 2\nOUT\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	cfg := config.Default()
	cfg.FFmpeg.FFmpegBinary = bin

	results := CheckEncoders(context.Background(), &cfg)
	if len(results) != 2 {
		t.Fatalf("results = %+v", results)
	}
	if !results[0].Passed {
		t.Fatalf("mpeg4 should be available: %+v", results[0])
	}
	if results[1].Passed {
		t.Fatalf("libx264 should be reported missing: %+v", results[1])
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := config.Default()
	cfg.FFmpeg.FFmpegBinary = "/definitely/not/ffmpeg"
	cfg.FFmpeg.FFprobeBinary = "/definitely/not/ffprobe"
	for _, status := range CheckSystemDeps(&cfg) {
		if status.Available {
			t.Fatalf("unexpected available status: %+v", status)
		}
	}
}

func TestCheckSystemDepsFindsStubsOnPath(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	for _, status := range CheckSystemDeps(cfg) {
		if !status.Available {
			t.Fatalf("expected %s on PATH: %+v", status.Name, status)
		}
		if filepath.Dir(status.Command) != filepath.Join(testsupport.BaseDir(cfg), "bin") {
			t.Fatalf("resolved %s to %s", status.Name, status.Command)
		}
	}
}

func TestRunAllChecksMetricsTextfileDir(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMetricsTextfile("benchcat.prom"))
	if err := cfg.EnsureStateDir(); err != nil {
		t.Fatalf("EnsureStateDir: %v", err)
	}
	var found bool
	for _, r := range RunAll(context.Background(), cfg) {
		if r.Name != "Metrics textfile directory" {
			continue
		}
		found = true
		if !r.Passed {
			t.Fatalf("metrics dir check failed: %+v", r)
		}
	}
	if !found {
		t.Fatal("metrics textfile directory was not checked")
	}
}
