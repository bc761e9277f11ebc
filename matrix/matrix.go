/*
Package matrix implements the floating point RGB image the dithering methods
operate on.

Pixels are stored row by row with three channels each. Channel values are
nominally in [0, 1] but may stray outside that range while quantization
error is being accumulated.
*/
package matrix

import (
	"errors"
	"fmt"
)

// Channels is the fixed depth of every pixel.
const Channels = 3

// ErrDimensions is returned for an image with no pixels or whose backing
// slice doesn't match its size.
var ErrDimensions = errors.New("matrix: invalid dimensions")

// Image is a Height by Width grid of RGB triples.
type Image struct {
	Width, Height int
	Pix           []float64
}

// New returns a black image of the given size.
func New(width, height int) *Image {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height*Channels),
	}
}

// FromSlice builds an image from rows of RGB triples, rows[y][x] being the
// pixel at (x, y). All rows must be the same length.
func FromSlice(rows [][][3]float64) (*Image, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrDimensions
	}
	m := New(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != m.Width {
			return nil, fmt.Errorf("%w: row %d has %d pixels, want %d", ErrDimensions, y, len(row), m.Width)
		}
		for x, px := range row {
			copy(m.Pixel(x, y), px[:])
		}
	}
	return m, nil
}

// Validate checks the image has at least one pixel and a correctly sized
// backing slice.
func (m *Image) Validate() error {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return ErrDimensions
	}
	if len(m.Pix) != m.Width*m.Height*Channels {
		return fmt.Errorf("%w: %d values for %dx%dx%d", ErrDimensions, len(m.Pix), m.Width, m.Height, Channels)
	}
	return nil
}

// Offset returns the index of the first channel of (x, y) in Pix.
func (m *Image) Offset(x, y int) int {
	return (y*m.Width + x) * Channels
}

// Pixel returns the three channels at (x, y). The slice aliases Pix.
func (m *Image) Pixel(x, y int) []float64 {
	i := m.Offset(x, y)
	return m.Pix[i : i+Channels : i+Channels]
}

// At returns a copy of the pixel at (x, y).
func (m *Image) At(x, y int) [3]float64 {
	var c [3]float64
	copy(c[:], m.Pixel(x, y))
	return c
}

// Set stores c at (x, y).
func (m *Image) Set(x, y int, c [3]float64) {
	copy(m.Pixel(x, y), c[:])
}

// In reports whether (x, y) lies inside the image.
func (m *Image) In(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	return &Image{
		Width:  m.Width,
		Height: m.Height,
		Pix:    append([]float64(nil), m.Pix...),
	}
}

// Equal reports whether both images have the same size and identical pixels.
func (m *Image) Equal(o *Image) bool {
	if m.Width != o.Width || m.Height != o.Height || len(m.Pix) != len(o.Pix) {
		return false
	}
	for i := range m.Pix {
		if m.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Clamp limits v to [0, 1].
func Clamp(v float64) float64 {
	return max(0, min(1, v))
}
