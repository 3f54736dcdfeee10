// Package ffmpeg implements the decode and encode handles used by the
// comparison pipeline on top of the ffmpeg and ffprobe binaries, plus the
// fixed-parameter H.264 transcode used for browser playback.
//
// Decoders probe the source with ffprobe and stream frames out of ffmpeg as
// rgba rawvideo, so each frame maps directly onto an image.RGBA. Encoders
// feed rgba rawvideo into ffmpeg's stdin. Every handle owns exactly one child
// process and reaps it on Close.
package ffmpeg
