/*
Package palette implements the fixed color tables a dithered image is
restricted to, along with the nearest color search every dithering method
relies on.

Colors are linear RGB triples with each channel in [0, 1]. A palette is
ordered; when two entries are equally close to a color the one with the
lower index is chosen.
*/
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/bodgit/ditherer/internal/rows"
	"github.com/bodgit/ditherer/matrix"
)

var (
	// ErrEmpty is returned for a palette with no colors
	ErrEmpty = errors.New("palette: empty palette")
	// ErrMalformed is returned for a palette with a non-finite channel
	ErrMalformed = errors.New("palette: malformed color")
	// ErrUnknown is returned when a palette name cannot be resolved
	ErrUnknown = errors.New("palette: unknown palette")
)

// Color is an RGB triple.
type Color [3]float64

// Palette is an ordered list of distinct colors.
type Palette []Color

// Validate checks the palette is usable for quantization.
func (p Palette) Validate() error {
	if len(p) == 0 {
		return ErrEmpty
	}
	for i, c := range p {
		for _, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: entry %d", ErrMalformed, i)
			}
			if v < 0 || v > 1 {
				return fmt.Errorf("%w: entry %d channel %g outside [0, 1]", ErrMalformed, i, v)
			}
		}
	}
	return nil
}

func sqDist(r, g, b float64, c Color) float64 {
	dr, dg, db := r-c[0], g-c[1], b-c[2]
	return dr*dr + dg*dg + db*db
}

func (p Palette) index(r, g, b float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range p {
		// Strictly less so the first of several equidistant entries wins
		if d := sqDist(r, g, b, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Index returns the index of the palette entry closest to c by Euclidean
// distance. It panics if the palette is empty.
func (p Palette) Index(c Color) int {
	if len(p) == 0 {
		panic("palette: Index called on empty palette")
	}
	return p.index(c[0], c[1], c[2])
}

// Nearest returns the palette entry closest to c.
func (p Palette) Nearest(c Color) Color {
	return p[p.Index(c)]
}

// Contains reports whether c is exactly one of the palette entries.
func (p Palette) Contains(c Color) bool {
	for _, e := range p {
		if e == c {
			return true
		}
	}
	return false
}

// NearestPixel writes the palette entry closest to the first three values of
// src into dst.
func (p Palette) NearestPixel(dst, src []float64) {
	c := p[p.index(src[0], src[1], src[2])]
	copy(dst[:3], c[:])
}

// NearestImage maps every pixel of m to its closest palette entry and returns
// the result as a new image. The result is identical to calling Nearest on
// each pixel in turn.
func (p Palette) NearestImage(m *matrix.Image) (*matrix.Image, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	out := matrix.New(m.Width, m.Height)
	rows.Parallel(m.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < m.Width; x++ {
				p.NearestPixel(out.Pixel(x, y), m.Pixel(x, y))
			}
		}
	})
	return out, nil
}

// ColorPalette converts the palette into a color.Palette of 8-bit colors in
// the same order.
func (p Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = color.RGBA{
			matrix.ToByte(c[0]),
			matrix.ToByte(c[1]),
			matrix.ToByte(c[2]),
			0xff,
		}
	}
	return cp
}
