package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFFmpeg()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	fields := []struct {
		key   string
		value *string
	}{
		{"paths.dl3dv_dir", &c.Paths.DL3DVDir},
		{"paths.mcbench_dir", &c.Paths.MCBenchDir},
		{"paths.user_camera_dir", &c.Paths.UserCameraDir},
		{"paths.user_object_dir", &c.Paths.UserObjectDir},
		{"paths.reencode_root", &c.Paths.ReencodeRoot},
		{"paths.state_dir", &c.Paths.StateDir},
		{"metrics.textfile", &c.Metrics.Textfile},
	}
	for _, field := range fields {
		expanded, err := expandPath(*field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeFFmpeg() {
	if value, ok := os.LookupEnv("BENCHCAT_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.FFmpeg.FFmpegBinary = value
	}
	if value, ok := os.LookupEnv("BENCHCAT_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.FFmpeg.FFprobeBinary = value
	}
	c.FFmpeg.FFmpegBinary = strings.TrimSpace(c.FFmpeg.FFmpegBinary)
	if c.FFmpeg.FFmpegBinary == "" {
		c.FFmpeg.FFmpegBinary = defaultFFmpegBinary
	}
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if c.FFmpeg.FFprobeBinary == "" {
		c.FFmpeg.FFprobeBinary = defaultFFprobeBinary
	}
	c.FFmpeg.VideoCodec = strings.TrimSpace(c.FFmpeg.VideoCodec)
	if c.FFmpeg.VideoCodec == "" {
		c.FFmpeg.VideoCodec = defaultVideoCodec
	}
	c.FFmpeg.CodecTag = strings.TrimSpace(c.FFmpeg.CodecTag)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
