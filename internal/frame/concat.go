package frame

import (
	"fmt"
	"image"
	"image/draw"

	"benchcat/internal/failure"
)

// ConcatHorizontal places frames side by side in argument order. All frames
// must share a height; nothing is resized here.
func ConcatHorizontal(frames ...*image.RGBA) (*image.RGBA, error) {
	if len(frames) == 0 {
		return nil, failure.Wrap(failure.ErrComposition, "frame", "concat", "no frames", nil)
	}
	height := -1
	width := 0
	for i, f := range frames {
		if f == nil {
			return nil, failure.Wrap(failure.ErrComposition, "frame", "concat", fmt.Sprintf("frame %d is nil", i), nil)
		}
		b := f.Bounds()
		if height < 0 {
			height = b.Dy()
		} else if b.Dy() != height {
			return nil, failure.Wrap(failure.ErrComposition, "frame", "concat", fmt.Sprintf("frame %d height %d differs from %d", i, b.Dy(), height), nil)
		}
		width += b.Dx()
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	x := 0
	for _, f := range frames {
		b := f.Bounds()
		draw.Draw(out, image.Rect(x, 0, x+b.Dx(), height), f, b.Min, draw.Src)
		x += b.Dx()
	}
	return out, nil
}

// FitCanvas draws img at the origin of a width x height canvas, clipping or
// leaving black padding as needed. An image that already matches is returned
// as is.
func FitCanvas(img *image.RGBA, width, height int) *image.RGBA {
	b := img.Bounds()
	if b.Min == (image.Point{}) && b.Dx() == width && b.Dy() == height {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
