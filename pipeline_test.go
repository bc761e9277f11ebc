package ditherer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/ditherer/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, file string, m image.Image) {
	t.Helper()
	f, err := os.Create(file)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, m))
	require.NoError(t, f.Close())
}

func readPNG(t *testing.T, file string) image.Image {
	t.Helper()
	m, err := decodeFile(file)
	require.NoError(t, err)
	return m
}

func TestResultNames(t *testing.T) {
	assert.Equal(t, "result_0001.png", ResultName(0))
	assert.Equal(t, "result_0123.png", ResultName(122))
	assert.Equal(t, filepath.Join("a", "clip_results"), ResultsDir(filepath.Join("a", "clip.mp4")))
	assert.Equal(t, filepath.Join("a", "frames_results"), ResultsDir(filepath.Join("a", "frames")))
}

func TestProcessDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	require.NoError(t, os.Mkdir(dir, 0o755))

	for _, name := range []string{"b.png", "a.png", "c.png"} {
		writePNG(t, filepath.Join(dir, name), gradient(24, 16))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.png"), []byte("ignored"), 0o644))

	d := New(palette.Builtin(), discard(), WithSeed(1))
	out, err := d.ProcessDirectory(dir, Settings{Scale: 100, Threshold: 0.5, Method: "block_random", Palette: "websafe"}, 4)
	require.NoError(t, err)
	assert.Equal(t, dir+"_results", out)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	p, err := palette.Builtin().Palette("websafe")
	require.NoError(t, err)
	cp := p.ColorPalette()

	for i := range entries {
		m := readPNG(t, filepath.Join(out, ResultName(i)))
		assert.Equal(t, image.Rect(0, 0, 24, 16), m.Bounds())
		c := color.RGBAModel.Convert(m.At(3, 3))
		assert.Equal(t, c, cp.Convert(c))
	}
}

func TestProcessDirectoryErrors(t *testing.T) {
	d := New(palette.Builtin(), discard())
	s := Settings{Scale: 100, Threshold: 0.5, Method: "threshold", Palette: "1bit_gray"}

	_, err := d.ProcessDirectory(t.TempDir(), s, 2)
	assert.Error(t, err)

	_, err = d.ProcessDirectory(filepath.Join(t.TempDir(), "missing"), s, 2)
	assert.Error(t, err)

	// A corrupt frame fails the whole run
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), gradient(4, 4))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("not a png"), 0o644))
	_, err = d.ProcessDirectory(dir, s, 2)
	assert.Error(t, err)
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "photo.png")
	writePNG(t, file, gradient(10, 10))

	d := New(palette.Builtin(), discard())
	out, err := d.ProcessFile(file, Settings{Scale: 200, Threshold: 0.5, Method: "threshold", Palette: "1bit_gray"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "photo_results", "result_0001.png"), out)

	m := readPNG(t, out)
	assert.Equal(t, image.Rect(0, 0, 20, 20), m.Bounds())
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			r, g, b, _ := m.At(x, y).RGBA()
			assert.Contains(t, []uint32{0, 0xffff}, r)
			assert.Equal(t, r, g)
			assert.Equal(t, r, b)
		}
	}
}
