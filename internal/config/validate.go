package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateConcat(); err != nil {
		return err
	}
	if c.Crop.ProgressEvery < 1 {
		return errors.New("crop.progress_every must be at least 1")
	}
	return c.validateLogging()
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.Quality < 0 || c.FFmpeg.Quality > 31 {
		return fmt.Errorf("ffmpeg.quality must be between 0 and 31, got %d", c.FFmpeg.Quality)
	}
	return nil
}

func (c *Config) validateConcat() error {
	if c.Concat.TargetHeight <= 0 {
		return fmt.Errorf("concat.target_height must be positive, got %d", c.Concat.TargetHeight)
	}
	if c.Concat.ProgressEvery < 1 {
		return errors.New("concat.progress_every must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
