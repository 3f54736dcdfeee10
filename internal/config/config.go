package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains dataset roots and the state directory.
type Paths struct {
	DL3DVDir      string `toml:"dl3dv_dir"`
	MCBenchDir    string `toml:"mcbench_dir"`
	UserCameraDir string `toml:"user_camera_dir"`
	UserObjectDir string `toml:"user_object_dir"`
	ReencodeRoot  string `toml:"reencode_root"`
	StateDir      string `toml:"state_dir"`
}

// FFmpeg contains external binary names and the intermediate encoder settings.
type FFmpeg struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	VideoCodec    string `toml:"video_codec"`
	CodecTag      string `toml:"codec_tag"`
	// Quality is the -q:v value for the intermediate encoder; 0 leaves the
	// encoder default.
	Quality int `toml:"quality"`
}

// Concat contains settings for side-by-side concatenation.
type Concat struct {
	TargetHeight       int  `toml:"target_height"`
	ProgressEvery      int  `toml:"progress_every"`
	UserCameraSlowdown bool `toml:"user_camera_slowdown"`
}

// Crop contains settings for the cropping workflow.
type Crop struct {
	ProgressEvery int `toml:"progress_every"`
}

// Reencode contains settings for the playback re-encode pass.
type Reencode struct {
	Overwrite bool `toml:"overwrite"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History controls the sqlite run history.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Metrics controls the prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Config encapsulates all configuration values for benchcat.
type Config struct {
	Paths    Paths    `toml:"paths"`
	FFmpeg   FFmpeg   `toml:"ffmpeg"`
	Concat   Concat   `toml:"concat"`
	Crop     Crop     `toml:"crop"`
	Reencode Reencode `toml:"reencode"`
	Logging  Logging  `toml:"logging"`
	History  History  `toml:"history"`
	Metrics  Metrics  `toml:"metrics"`
}

const (
	defaultConfigPath   = "~/.config/benchcat/config.toml"
	projectConfigName   = "benchcat.toml"
	historyDatabaseName = "history.db"
)

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error; defaults apply and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// HistoryPath is the sqlite database used for run history.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, historyDatabaseName)
}

// EnsureStateDir creates the state directory when history is enabled.
func (c *Config) EnsureStateDir() error {
	if !c.History.Enabled {
		return nil
	}
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create state directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for command arguments.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
