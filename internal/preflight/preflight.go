package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"benchcat/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional results never make the overall check fail.
	Optional bool
}

// RunAll executes the filesystem checks for the given config. Dataset
// directories are only checked when configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	datasets := []struct{ name, path string }{
		{"DL3DV directory", cfg.Paths.DL3DVDir},
		{"MC-Bench directory", cfg.Paths.MCBenchDir},
		{"User camera directory", cfg.Paths.UserCameraDir},
		{"User object directory", cfg.Paths.UserObjectDir},
		{"Re-encode root", cfg.Paths.ReencodeRoot},
	}
	for _, d := range datasets {
		if strings.TrimSpace(d.path) == "" {
			continue
		}
		result := CheckDirectoryAccess(d.name, d.path)
		result.Optional = true
		results = append(results, result)
	}

	if textfile := strings.TrimSpace(cfg.Metrics.Textfile); textfile != "" {
		results = append(results, CheckDirectoryAccess("Metrics textfile directory", filepath.Dir(textfile)))
	}
	return results
}

// AllPassed reports whether every required result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return false
		}
	}
	return true
}
