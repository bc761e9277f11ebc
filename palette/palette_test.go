package palette

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/bodgit/ditherer/matrix"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var blackWhite = Palette{{0, 0, 0}, {1, 1, 1}}

func TestNearest(t *testing.T) {
	tables := []struct {
		name  string
		p     Palette
		color Color
		want  int
	}{
		{"black", blackWhite, Color{0.1, 0.2, 0.1}, 0},
		{"white", blackWhite, Color{0.9, 0.8, 0.6}, 1},
		{"out of range high", blackWhite, Color{5, 5, 5}, 1},
		{"out of range low", blackWhite, Color{-5, -5, -5}, 0},
		{"single entry", Palette{{0.3, 0.3, 0.3}}, Color{1, 0, 1}, 0},
		{"red", Builtin().palettes["ega_default"], Color{0.7, 0.05, 0}, 4},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			assert.Equal(t, table.want, table.p.Index(table.color))
			assert.Equal(t, table.p[table.want], table.p.Nearest(table.color))
		})
	}
}

func TestNearestTieBreak(t *testing.T) {
	// Both entries are exactly 0.5 away from mid gray on every channel
	p := Palette{{1, 1, 1}, {0, 0, 0}}
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, p.Index(Color{0.5, 0.5, 0.5}))
	}

	p = Palette{{1, 1, 1}, {0.5, 0, 0}, {0, 0.5, 0}}
	assert.Equal(t, 1, p.Index(Color{0.25, 0.25, 0}))
}

func TestNearestImageMatchesScalar(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	m := matrix.New(37, 23)
	for i := range m.Pix {
		m.Pix[i] = r.Float64()*1.4 - 0.2
	}

	p := Builtin().palettes["c64"]
	out, err := p.NearestImage(m)
	require.NoError(t, err)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			want := p.Nearest(Color(m.At(x, y)))
			require.Equal(t, [3]float64(want), out.At(x, y), "pixel (%d, %d)", x, y)
		}
	}

	_, err = Palette{}.NearestImage(m)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = p.NearestImage(matrix.New(0, 0))
	assert.ErrorIs(t, err, matrix.ErrDimensions)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Palette{}.Validate(), ErrEmpty)
	assert.ErrorIs(t, Palette{{0, math.NaN(), 0}}.Validate(), ErrMalformed)
	assert.ErrorIs(t, Palette{{math.Inf(1), 0, 0}}.Validate(), ErrMalformed)
	assert.ErrorIs(t, Palette{{0, 0, 0}, {1.5, 0, 0}}.Validate(), ErrMalformed)
	assert.ErrorIs(t, Palette{{-0.1, 0, 0}}.Validate(), ErrMalformed)
	assert.ErrorIs(t, Palette{{0, 0, 255}}.Validate(), ErrMalformed)
	assert.NoError(t, Palette{{0, 0, 0}, {1, 1, 1}}.Validate())
	assert.NoError(t, blackWhite.Validate())
}

func TestIndexEmptyPanics(t *testing.T) {
	assert.Panics(t, func() { Palette{}.Index(Color{}) })
}

func TestContains(t *testing.T) {
	assert.True(t, blackWhite.Contains(Color{1, 1, 1}))
	assert.False(t, blackWhite.Contains(Color{1, 1, 0.9999}))
}

func TestColorPalette(t *testing.T) {
	cp := Builtin().palettes["cga_mode4_1"].ColorPalette()
	require.Len(t, cp, 4)
	r, g, b, a := cp[3].RGBA()
	assert.Equal(t, []uint32{0xaaaa, 0xaaaa, 0xaaaa, 0xffff}, []uint32{r, g, b, a})
}

func TestBuiltin(t *testing.T) {
	tbl := Builtin()

	want := []string{
		"1bit_gray", "2bit_gray", "3bit_gray", "4bit_gray", "5bit_gray", "6bit_gray", "7bit_gray",
		"cga_mode4_1", "cga_mode4_2", "cga_mode4_1_high", "cga_mode4_2_high", "cga_mode5", "cga_mode5_high",
		"ega_default", "websafe", "c64",
	}
	if diff := cmp.Diff(want, tbl.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	sizes := map[string]int{
		"1bit_gray":   2,
		"3bit_gray":   8,
		"7bit_gray":   128,
		"cga_mode5":   4,
		"ega_default": 16,
		"websafe":     216,
		"c64":         16,
	}
	for name, size := range sizes {
		p, err := tbl.Palette(name)
		require.NoError(t, err)
		assert.Len(t, p, size, name)
		assert.NoError(t, p.Validate(), name)
	}

	p, err := tbl.Palette("1bit_gray")
	require.NoError(t, err)
	assert.Equal(t, blackWhite, p)

	ega, err := tbl.Palette("ega_default")
	require.NoError(t, err)
	assert.Equal(t, Color{2. / 3., 1. / 3., 0}, ega[6], "brown")

	_, err = tbl.Palette("nope")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestTableSetKeepsOrder(t *testing.T) {
	tbl := NewTable()
	tbl.Set("a", blackWhite)
	tbl.Set("b", blackWhite)
	tbl.Set("a", Palette{{0, 0, 0}})
	assert.Equal(t, []string{"a", "b"}, tbl.Names())

	p, err := tbl.Palette("a")
	require.NoError(t, err)
	assert.Len(t, p, 1)
}

type countingProvider struct {
	calls int
	t     *Table
}

func (c *countingProvider) Palette(name string) (Palette, error) {
	c.calls++
	return c.t.Palette(name)
}

func TestRegistry(t *testing.T) {
	tbl := NewTable()
	tbl.Set("bw", blackWhite)
	tbl.Set("empty", Palette{})

	cp := &countingProvider{t: tbl}
	r := NewRegistry(cp)

	for i := 0; i < 3; i++ {
		p, err := r.Palette("bw")
		require.NoError(t, err)
		assert.Equal(t, blackWhite, p)
	}
	assert.Equal(t, 1, cp.calls)

	_, err := r.Palette("empty")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = r.Palette("missing")
	assert.True(t, errors.Is(err, ErrUnknown))

	r.Forget("bw")
	_, err = r.Palette("bw")
	require.NoError(t, err)
	assert.Equal(t, 4, cp.calls)
}
