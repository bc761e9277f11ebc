package matrix

import (
	"errors"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// ToByte converts a channel value to 8 bits, clamping to [0, 1] first.
func ToByte(v float64) uint8 {
	return uint8(math.Round(Clamp(v) * 0xff))
}

// FromImage converts any image into a matrix with channels scaled to [0, 1].
// Alpha is discarded.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	m := New(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			px := m.Pixel(x-b.Min.X, y-b.Min.Y)
			px[0] = float64(c.R) / 0xff
			px[1] = float64(c.G) / 0xff
			px[2] = float64(c.B) / 0xff
		}
	}
	return m
}

// RGBA converts m into an 8-bit image with its top-left corner at (0, 0).
func (m *Image) RGBA() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			px := m.Pixel(x, y)
			dst.SetRGBA(x, y, color.RGBA{ToByte(px[0]), ToByte(px[1]), ToByte(px[2]), 0xff})
		}
	}
	return dst
}

// ToPaletted converts m into a paletted image using p. Every pixel of m is
// expected to already be a palette color; anything else is mapped to the
// closest entry by p.Convert.
func (m *Image) ToPaletted(p color.Palette) (*image.Paletted, error) {
	if len(p) == 0 {
		return nil, errors.New("matrix: empty palette")
	}
	pm := image.NewPaletted(image.Rect(0, 0, m.Width, m.Height), p)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			px := m.Pixel(x, y)
			pm.SetColorIndex(x, y, uint8(p.Index(color.RGBA{ToByte(px[0]), ToByte(px[1]), ToByte(px[2]), 0xff})))
		}
	}
	return pm, nil
}

// Scale resizes src by percent using nearest neighbour sampling. A percent
// of 100 or less than one returns src unchanged.
func Scale(src image.Image, percent int) image.Image {
	if percent == 100 || percent < 1 {
		return src
	}
	b := src.Bounds()
	w, h := max(1, b.Dx()*percent/100), max(1, b.Dy()*percent/100)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
