// Package frame implements the per-frame geometry used by the comparison
// pipeline: cropping with far-edge offsets, aspect-preserving resizes to a
// target height, and left-to-right concatenation.
//
// Frames are *image.RGBA values with a zero origin. Every function returns a
// freshly allocated image and leaves its inputs untouched.
package frame
