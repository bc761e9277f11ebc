package dither

import (
	"github.com/bodgit/ditherer/internal/rows"
	"github.com/bodgit/ditherer/matrix"
	"github.com/bodgit/ditherer/palette"
)

// BT.601 luma weights
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// luminance returns the BT.601 luma of an RGB pixel, or the mean of the
// channels for any other depth.
func luminance(px []float64) float64 {
	if len(px) == 3 {
		return lumaR*px[0] + lumaG*px[1] + lumaB*px[2]
	}
	if len(px) == 0 {
		return 0
	}
	var sum float64
	for _, v := range px {
		sum += v
	}
	return sum / float64(len(px))
}

// thresholdQuantize classifies each pixel as white when its luma is strictly
// greater than level and black otherwise, then maps white and black onto
// their nearest palette entries.
func thresholdQuantize(m *matrix.Image, p palette.Palette, level float64) *matrix.Image {
	out := matrix.New(m.Width, m.Height)

	white := p.Nearest(palette.Color{1, 1, 1})
	black := p.Nearest(palette.Color{0, 0, 0})

	rows.Parallel(m.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < m.Width; x++ {
				if luminance(m.Pixel(x, y)) > level {
					out.Set(x, y, white)
				} else {
					out.Set(x, y, black)
				}
			}
		}
	})

	return out
}
