package composite

import (
	"fmt"
	"image"

	"benchcat/internal/failure"
	"benchcat/internal/frame"
)

// DefaultTargetHeight is the canvas height used when a request leaves it unset.
const DefaultTargetHeight = 320

// Compose resizes every frame to targetHeight and lays them out left to right
// in tuple order.
func Compose(frames []*image.RGBA, targetHeight int) (*image.RGBA, error) {
	if len(frames) == 0 {
		return nil, failure.Wrap(failure.ErrComposition, "composite", "compose", "empty frame tuple", nil)
	}
	resized := make([]*image.RGBA, len(frames))
	for i, f := range frames {
		r, err := frame.ResizeToHeight(f, targetHeight)
		if err != nil {
			return nil, fmt.Errorf("resize member %d: %w", i, err)
		}
		if r.Bounds().Dy() != targetHeight {
			return nil, failure.Wrap(failure.ErrComposition, "composite", "compose", fmt.Sprintf("member %d resized to height %d, want %d", i, r.Bounds().Dy(), targetHeight), nil)
		}
		resized[i] = r
	}
	return frame.ConcatHorizontal(resized...)
}
