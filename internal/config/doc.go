// Package config loads, normalizes, and validates benchcat configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment overrides for the ffmpeg binaries. The
// Config type gathers the dataset roots, encoder settings, and output knobs
// every workflow needs so the CLI can resolve them in one pass.
package config
