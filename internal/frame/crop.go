package frame

import (
	"fmt"
	"image"

	"benchcat/internal/failure"
)

// CropSpec is a crop box in pixels. Negative X or Y are measured from the
// right or bottom edge. A zero W or H extends the box to the far edge of the
// frame being cropped.
type CropSpec struct {
	X int `json:"x" toml:"x"`
	Y int `json:"y" toml:"y"`
	W int `json:"w" toml:"w"`
	H int `json:"h" toml:"h"`
}

func (s CropSpec) String() string {
	return fmt.Sprintf("x=%d y=%d w=%d h=%d", s.X, s.Y, s.W, s.H)
}

// Resolve turns the spec into an absolute rectangle for a frame of the given
// size. Sentinels are resolved against this size, so the same spec can yield
// different boxes for differently sized frames.
func (s CropSpec) Resolve(width, height int) (image.Rectangle, error) {
	x0, w, err := resolveAxis(s.X, s.W, width)
	if err != nil {
		return image.Rectangle{}, failure.Wrap(failure.ErrGeometry, "frame", "crop", fmt.Sprintf("%s outside %dx%d frame (x axis)", s, width, height), err)
	}
	y0, h, err := resolveAxis(s.Y, s.H, height)
	if err != nil {
		return image.Rectangle{}, failure.Wrap(failure.ErrGeometry, "frame", "crop", fmt.Sprintf("%s outside %dx%d frame (y axis)", s, width, height), err)
	}
	return image.Rect(x0, y0, x0+w, y0+h), nil
}

func resolveAxis(offset, size, dimension int) (int, int, error) {
	start := offset
	if start < 0 {
		start = dimension + offset
	}
	if size == 0 {
		size = dimension - start
	}
	switch {
	case start < 0:
		return 0, 0, fmt.Errorf("offset %d starts before the frame edge", offset)
	case size <= 0:
		return 0, 0, fmt.Errorf("empty extent %d", size)
	case start+size > dimension:
		return 0, 0, fmt.Errorf("extent %d+%d exceeds dimension %d", start, size, dimension)
	}
	return start, size, nil
}

// Crop copies the region described by spec out of img.
func Crop(img *image.RGBA, spec CropSpec) (*image.RGBA, error) {
	if img == nil {
		return nil, failure.Wrap(failure.ErrGeometry, "frame", "crop", "nil frame", nil)
	}
	bounds := img.Bounds()
	box, err := spec.Resolve(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	box = box.Add(bounds.Min)

	out := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	rowBytes := box.Dx() * 4
	for y := 0; y < box.Dy(); y++ {
		src := img.PixOffset(box.Min.X, box.Min.Y+y)
		dst := out.PixOffset(0, y)
		copy(out.Pix[dst:dst+rowBytes], img.Pix[src:src+rowBytes])
	}
	return out, nil
}
