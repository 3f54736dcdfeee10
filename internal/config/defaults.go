package config

const (
	defaultStateDir      = "~/.local/share/benchcat"
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultVideoCodec    = "mpeg4"
	defaultCodecTag      = "mp4v"
	defaultTargetHeight  = 320
	// Concatenation reports every 10 frames and cropping every 30.
	defaultConcatProgressEvery = 10
	defaultCropProgressEvery   = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			VideoCodec:    defaultVideoCodec,
			CodecTag:      defaultCodecTag,
		},
		Concat: Concat{
			TargetHeight:       defaultTargetHeight,
			ProgressEvery:      defaultConcatProgressEvery,
			UserCameraSlowdown: true,
		},
		Crop: Crop{
			ProgressEvery: defaultCropProgressEvery,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
		},
	}
}
