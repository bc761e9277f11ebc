package palette

import "fmt"

// Table is an ordered collection of named palettes.
type Table struct {
	names    []string
	palettes map[string]Palette
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		palettes: make(map[string]Palette),
	}
}

// Set stores p under name. Re-using a name replaces the palette but keeps
// its original position.
func (t *Table) Set(name string, p Palette) {
	if _, ok := t.palettes[name]; !ok {
		t.names = append(t.names, name)
	}
	t.palettes[name] = p
}

// Names returns the palette names in the order they were added.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Palette returns a copy of the named palette.
func (t *Table) Palette(name string) (Palette, error) {
	p, ok := t.palettes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return append(Palette(nil), p...), nil
}

// Builtin returns a new table holding the stock grayscale, CGA, EGA,
// websafe and C64 palettes.
func Builtin() *Table {
	t := NewTable()
	buildGrayscale(t)
	buildCGA(t)
	buildEGA(t)
	buildWebsafe(t)
	buildC64(t)
	return t
}

func buildGrayscale(t *Table) {
	for depth := 1; depth < 8; depth++ {
		levels := 1<<depth - 1
		p := Palette{{0, 0, 0}}
		for l := 1; l <= levels; l++ {
			v := float64(l) / float64(levels)
			p = append(p, Color{v, v, v})
		}
		t.Set(fmt.Sprintf("%dbit_gray", depth), p)
	}
}

// rgbi returns the eight low and eight high intensity RGBI colors. Low
// brown (index 6) has its green halved as on real hardware.
func rgbi() (low, high Palette) {
	for _, r := range []float64{0, 2. / 3.} {
		for _, g := range []float64{0, 2. / 3.} {
			for _, b := range []float64{0, 2. / 3.} {
				low = append(low, Color{r, g, b})
			}
		}
	}
	low[6][1] /= 2

	for _, r := range []float64{1. / 3., 1} {
		for _, g := range []float64{1. / 3., 1} {
			for _, b := range []float64{1. / 3., 1} {
				high = append(high, Color{r, g, b})
			}
		}
	}
	return
}

func buildCGA(t *Table) {
	low, high := rgbi()
	t.Set("cga_mode4_1", Palette{low[0], low[3], low[5], low[7]})
	t.Set("cga_mode4_2", Palette{low[0], low[2], low[4], low[6]})
	t.Set("cga_mode4_1_high", Palette{low[0], high[3], high[5], high[7]})
	t.Set("cga_mode4_2_high", Palette{low[0], high[2], high[4], high[6]})
	t.Set("cga_mode5", Palette{low[0], low[3], low[4], low[7]})
	t.Set("cga_mode5_high", Palette{low[0], high[3], high[4], high[7]})
}

func buildEGA(t *Table) {
	low, high := rgbi()
	t.Set("ega_default", append(low, high...))
}

func buildWebsafe(t *Table) {
	p := make(Palette, 0, 216)
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p = append(p, Color{float64(r) / 5, float64(g) / 5, float64(b) / 5})
			}
		}
	}
	t.Set("websafe", p)
}

// Measured C64 (Pepto) colors in 0-255 units
var c64 = [16][3]float64{
	{0.0, 0.0, 0.0},
	{254.999999878, 254.999999878, 254.999999878},
	{103.681836072, 55.445357742, 43.038096345},
	{111.932673473, 163.520631667, 177.928819803},
	{111.399725075, 60.720543693, 133.643433983},
	{88.102223525, 140.581101312, 67.050415368},
	{52.769271594, 40.296416104, 121.446211753},
	{183.892638117, 198.676829993, 110.585717385},
	{111.399725075, 79.245328562, 37.169652483},
	{66.932804788, 57.383702891, 0.0},
	{153.690586380, 102.553762644, 89.111118307},
	{67.999561813, 67.999561813, 67.999561813},
	{107.797780127, 107.797780127, 107.797780127},
	{154.244479632, 209.771445903, 131.584994128},
	{107.797780127, 94.106015515, 180.927622164},
	{149.480882981, 149.480882981, 149.480882981},
}

func buildC64(t *Table) {
	p := make(Palette, len(c64))
	for i, c := range c64 {
		p[i] = Color{c[0] / 255, c[1] / 255, c[2] / 255}
	}
	t.Set("c64", p)
}
