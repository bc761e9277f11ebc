/*
Package dither implements the methods used to reduce a full color image to a
fixed palette.

Four families of method are provided:

  - error diffusion, which spreads each pixel's quantization error onto the
    pixels not yet visited in raster order
  - ordered dithering, which biases each pixel by a tiled threshold map
  - stochastic dithering, which biases each pixel, or each block of pixels,
    by Gaussian noise
  - binary thresholding on luma

Every method is selected by name through Apply. The threshold argument is in
[0, 1] with 0.5 being neutral; how it biases a pixel depends on the method
and is documented on each Kind.
*/
package dither

import (
	"errors"
	"fmt"
	"math"

	"github.com/bodgit/ditherer/matrix"
	"github.com/bodgit/ditherer/palette"
)

var (
	// ErrInvalidPalette is returned when the palette is empty or malformed
	ErrInvalidPalette = errors.New("dither: invalid palette")
	// ErrUnknownMethod is returned for an unregistered method, kernel or
	// threshold map name
	ErrUnknownMethod = errors.New("dither: unknown method")
	// ErrInvalidDimensions is returned for an image with no pixels or a
	// mismatched backing slice
	ErrInvalidDimensions = errors.New("dither: invalid dimensions")
)

const neutral = 0.5

func checkInput(m *matrix.Image, p palette.Palette) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPalette, err)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDimensions, err)
	}
	return nil
}

// normalize clamps the threshold to [0, 1], treating NaN as neutral.
func normalize(threshold float64) float64 {
	if math.IsNaN(threshold) {
		return neutral
	}
	return matrix.Clamp(threshold)
}
