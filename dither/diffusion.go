package dither

import (
	"github.com/bodgit/ditherer/matrix"
	"github.com/bodgit/ditherer/palette"
)

// diffuse quantizes m in raster order, pushing each pixel's error onto the
// not yet visited neighbours described by k. The threshold scales the pixel
// by 2*threshold before matching but the error is measured against the
// unscaled value.
func diffuse(m *matrix.Image, p palette.Palette, k *Kernel, threshold float64) *matrix.Image {
	// Scratch buffer accumulating error; m itself is never written
	work := m.Clone()
	out := matrix.New(m.Width, m.Height)

	gain := threshold * 2

	var adjusted, quantErr [matrix.Channels]float64
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			old := work.Pixel(x, y)
			for i, v := range old {
				adjusted[i] = v * gain
			}

			c := p.Nearest(adjusted)
			out.Set(x, y, c)

			for i, v := range old {
				quantErr[i] = v - c[i]
			}
			if quantErr == [matrix.Channels]float64{} {
				continue
			}

			for _, t := range k.taps {
				nx, ny := x+t.dx, y+t.dy
				if !work.In(nx, ny) {
					continue
				}
				n := work.Pixel(nx, ny)
				for i := range n {
					n[i] += quantErr[i] * t.weight
				}
			}
		}
	}

	return out
}
