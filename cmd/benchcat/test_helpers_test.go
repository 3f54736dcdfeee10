package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

const fakeFFmpegScript = `#!/bin/sh
cat <<'OUT'
ffmpeg version 7.1-test Copyright (c) 2000-2024 the FFmpeg developers
 V..... = Video
 V....D libx264              libx264 H.264 / AVC
 V....D mpeg4                MPEG-4 part 2
OUT
`

// setupCLITestEnv writes a config file pointing every path into a temp dir
// and stub ffmpeg/ffprobe binaries that answer -version and -encoders.
func setupCLITestEnv(t *testing.T) cliTestEnv {
	t.Helper()

	base := t.TempDir()
	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte(fakeFFmpegScript), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
dl3dv_dir = %q
mcbench_dir = %q
state_dir = %q

[ffmpeg]
ffmpeg_binary = %q
ffprobe_binary = %q

[logging]
level = "error"
`,
		filepath.Join(base, "DL3DV"),
		filepath.Join(base, "MC-Bench"),
		filepath.Join(base, "state"),
		filepath.Join(binDir, "ffmpeg"),
		filepath.Join(binDir, "ffprobe"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cliTestEnv{baseDir: base, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	fullArgs := args
	if configPath != "" {
		fullArgs = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(fullArgs)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
