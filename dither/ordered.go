package dither

import (
	"github.com/bodgit/ditherer/internal/rows"
	"github.com/bodgit/ditherer/matrix"
	"github.com/bodgit/ditherer/palette"
)

// ordered scales each pixel by one plus its tiled map bias, the bias being
// shifted by threshold-0.5, and quantizes the result. Black therefore always
// stays black.
func ordered(m *matrix.Image, p palette.Palette, tm *ThresholdMap, threshold float64) *matrix.Image {
	out := matrix.New(m.Width, m.Height)
	shift := threshold - neutral

	rows.Parallel(m.Height, func(start, end int) {
		var c palette.Color
		for y := start; y < end; y++ {
			for x := 0; x < m.Width; x++ {
				bias := tm.At(x, y) + shift
				for i, v := range m.Pixel(x, y) {
					c[i] = v + v*bias
				}
				out.Set(x, y, p.Nearest(c))
			}
		}
	})

	return out
}
