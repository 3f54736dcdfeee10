package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("blank command = %#v", results[2])
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestVersionReadsFirstLine(t *testing.T) {
	bin := writeScript(t, "echo 'ffmpeg version 7.1 Copyright (c) 2000-2024'\necho 'built with gcc'\n")
	got, err := Version(context.Background(), bin)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if got != "ffmpeg version 7.1 Copyright (c) 2000-2024" {
		t.Fatalf("Version = %q", got)
	}
}

func TestVersionReportsFailure(t *testing.T) {
	bin := writeScript(t, "exit 3\n")
	if _, err := Version(context.Background(), bin); err == nil {
		t.Fatal("expected error from failing binary")
	}
}

func TestListsEncoder(t *testing.T) {
	listing := `Encoders:
 V..... = Video
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 V....D mpeg4                MPEG-4 part 2
 A....D aac                  AAC (Advanced Audio Coding)
`
	tests := []struct {
		encoder string
		want    bool
	}{
		{"libx264", true},
		{"mpeg4", true},
		{"aac", false},
		{"libx265", false},
		{"=", false},
	}
	for _, tt := range tests {
		if got := listsEncoder(listing, tt.encoder); got != tt.want {
			t.Fatalf("listsEncoder(%q) = %v, want %v", tt.encoder, got, tt.want)
		}
	}
}
