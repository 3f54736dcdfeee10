package frame

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"benchcat/internal/failure"
)

// TargetWidth returns the width that keeps the aspect ratio of a width x
// height frame scaled to targetHeight. The result is truncated, computed in
// integers so repeated calls agree exactly.
func TargetWidth(width, height, targetHeight int) int {
	if height <= 0 {
		return 0
	}
	return width * targetHeight / height
}

// ResizeToHeight scales img to targetHeight while preserving its aspect ratio.
func ResizeToHeight(img *image.RGBA, targetHeight int) (*image.RGBA, error) {
	if img == nil {
		return nil, failure.Wrap(failure.ErrComposition, "frame", "resize", "nil frame", nil)
	}
	bounds := img.Bounds()
	if targetHeight <= 0 || bounds.Dy() <= 0 {
		return nil, failure.Wrap(failure.ErrComposition, "frame", "resize", fmt.Sprintf("invalid heights: frame %d target %d", bounds.Dy(), targetHeight), nil)
	}
	width := TargetWidth(bounds.Dx(), bounds.Dy(), targetHeight)
	if width <= 0 {
		return nil, failure.Wrap(failure.ErrComposition, "frame", "resize", fmt.Sprintf("%dx%d frame collapses at height %d", bounds.Dx(), bounds.Dy(), targetHeight), nil)
	}

	out := image.NewRGBA(image.Rect(0, 0, width, targetHeight))
	if width == bounds.Dx() && targetHeight == bounds.Dy() {
		xdraw.Copy(out, image.Point{}, img, bounds, xdraw.Src, nil)
		return out, nil
	}
	xdraw.BiLinear.Scale(out, out.Bounds(), img, bounds, xdraw.Src, nil)
	return out, nil
}
