package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Requirement defines an external dependency benchcat relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

const probeTimeout = 5 * time.Second

// Version returns the first line of `<command> -version`, which is how both
// ffmpeg and ffprobe identify their build.
func Version(ctx context.Context, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, command, "-hide_banner", "-version").Output() //nolint:gosec
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", command, err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line), nil
}

// HasEncoder reports whether ffmpeg lists encoder among its video encoders.
func HasEncoder(ctx context.Context, ffmpegCommand, encoder string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, ffmpegCommand, "-hide_banner", "-encoders").Output() //nolint:gosec
	if err != nil {
		return false, fmt.Errorf("%s -encoders: %w", ffmpegCommand, err)
	}
	return listsEncoder(string(out), encoder), nil
}

// listsEncoder scans `ffmpeg -encoders` output, whose rows look like
// " V....D libx264   H.264 / AVC ...".
func listsEncoder(listing, encoder string) bool {
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		// The legend line " V..... = Video" shares the row shape.
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "V") || fields[1] == "=" {
			continue
		}
		if fields[1] == encoder {
			return true
		}
	}
	return false
}
