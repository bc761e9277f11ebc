package dither

import (
	"math/rand/v2"

	"github.com/bodgit/ditherer/internal/rows"
	"github.com/bodgit/ditherer/matrix"
	"github.com/bodgit/ditherer/palette"
)

const (
	// Standard deviation of the noise added to each channel
	noiseSigma = 1. / 6.
	// The image is split into roughly blockDivisor blocks in each direction
	blockDivisor = 50
)

// stream returns the random source for one row or block. Deriving it from
// the seed and the index keeps the output independent of how work is
// scheduled.
func stream(seed uint64, index int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(index)))
}

func noisy(r *rand.Rand, v, bias float64) float64 {
	return matrix.Clamp(v + r.NormFloat64()*noiseSigma + bias)
}

// random adds independent Gaussian noise plus threshold-0.5 to every channel
// of every pixel, clamps, then quantizes.
func random(m *matrix.Image, p palette.Palette, threshold float64, seed uint64) *matrix.Image {
	out := matrix.New(m.Width, m.Height)
	bias := threshold - neutral

	rows.Parallel(m.Height, func(start, end int) {
		var c palette.Color
		for y := start; y < end; y++ {
			r := stream(seed, y)
			for x := 0; x < m.Width; x++ {
				for i, v := range m.Pixel(x, y) {
					c[i] = noisy(r, v, bias)
				}
				out.Set(x, y, p.Nearest(c))
			}
		}
	})

	return out
}

// blockSize returns the block width and height used by blockRandom.
func blockSize(width, height int) (int, int) {
	return max(1, width/blockDivisor), max(1, height/blockDivisor)
}

// blockRandom averages each block, applies one noise draw per channel plus
// threshold-0.5, and fills the whole block with the single nearest color.
// Blocks on the right and bottom edges are clipped to the image.
func blockRandom(m *matrix.Image, p palette.Palette, threshold float64, seed uint64) *matrix.Image {
	out := matrix.New(m.Width, m.Height)
	bias := threshold - neutral

	bw, bh := blockSize(m.Width, m.Height)
	across := (m.Width + bw - 1) / bw
	down := (m.Height + bh - 1) / bh

	rows.Parallel(down, func(start, end int) {
		var c palette.Color
		for by := start; by < end; by++ {
			y0, y1 := by*bh, min(by*bh+bh, m.Height)
			for bx := 0; bx < across; bx++ {
				x0, x1 := bx*bw, min(bx*bw+bw, m.Width)

				var sum [matrix.Channels]float64
				for y := y0; y < y1; y++ {
					for x := x0; x < x1; x++ {
						for i, v := range m.Pixel(x, y) {
							sum[i] += v
						}
					}
				}
				n := float64((x1 - x0) * (y1 - y0))

				r := stream(seed, by*across+bx)
				for i := range c {
					c[i] = noisy(r, sum[i]/n, bias)
				}
				q := p.Nearest(c)

				for y := y0; y < y1; y++ {
					for x := x0; x < x1; x++ {
						out.Set(x, y, q)
					}
				}
			}
		}
	})

	return out
}
