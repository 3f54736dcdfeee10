package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"benchcat/internal/config"
	"benchcat/internal/deps"
	"benchcat/internal/media/ffmpeg"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the ffmpeg and ffprobe binaries named in cfg.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpeg.FFmpegBinary,
			Description: "Required for decoding, encoding and re-encoding",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFmpeg.FFprobeBinary,
			Description: "Required for stream inspection",
		},
	})
}

// CheckEncoders verifies that ffmpeg ships the intermediate encoder from cfg
// and the H.264 encoder used by the playback re-encode.
func CheckEncoders(ctx context.Context, cfg *config.Config) []Result {
	required := []struct{ name, encoder string }{
		{"Intermediate encoder", cfg.FFmpeg.VideoCodec},
		{"Playback encoder", ffmpeg.PlaybackEncoder},
	}
	results := make([]Result, 0, len(required))
	for _, r := range required {
		ok, err := deps.HasEncoder(ctx, cfg.FFmpeg.FFmpegBinary, r.encoder)
		switch {
		case err != nil:
			results = append(results, Result{Name: r.name, Detail: fmt.Sprintf("%s (error: %v)", r.encoder, err)})
		case !ok:
			results = append(results, Result{Name: r.name, Detail: fmt.Sprintf("%s (error: not available in this ffmpeg build)", r.encoder)})
		default:
			results = append(results, Result{Name: r.name, Passed: true, Detail: r.encoder})
		}
	}
	return results
}
