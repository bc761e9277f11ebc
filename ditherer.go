/*
Package ditherer is a library for reducing images and video frames to the
fixed palettes of retro hardware.

Palettes are resolved by name through a palette.Provider, either the
built-in table or the sqlite backed DB, and the image is then handed to one
of the methods in the dither package.
*/
package ditherer

import (
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"log"
	"math"

	"github.com/bodgit/ditherer/dither"
	"github.com/bodgit/ditherer/matrix"
	"github.com/bodgit/ditherer/palette"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 20

// Settings select how an image is processed.
type Settings struct {
	// Scale is the percentage to resize the image by before dithering
	Scale int
	// Threshold biases the method, 0.5 is neutral
	Threshold float64
	Method    string
	Palette   string
}

// ResultStore persists processed frames between runs. DB implements it.
type ResultStore interface {
	FindResult(key string) (*matrix.Image, error)
	StoreResult(key string, m *matrix.Image) error
}

// Ditherer resolves palettes and applies dithering methods, caching the
// most recently processed frames.
type Ditherer struct {
	palettes *palette.Registry
	store    ResultStore
	logger   *log.Logger
	seed     *uint64

	// nil when in-memory caching is disabled
	cache *lru.Cache[string, *matrix.Image]
}

// Option configures a Ditherer.
type Option func(*Ditherer)

// WithStore adds a persistent result store consulted after the in-memory
// cache.
func WithStore(s ResultStore) Option {
	return func(d *Ditherer) {
		d.store = s
	}
}

// WithCacheSize sets the number of processed frames kept in memory. Zero
// or less disables the in-memory cache.
func WithCacheSize(n int) Option {
	return func(d *Ditherer) {
		d.cache = newCache(n)
	}
}

func newCache(n int) *lru.Cache[string, *matrix.Image] {
	if n <= 0 {
		return nil
	}
	c, err := lru.New[string, *matrix.Image](n)
	if err != nil {
		// Only returned for a non-positive size
		panic(err)
	}
	return c
}

// WithSeed makes the stochastic methods reproducible.
func WithSeed(seed uint64) Option {
	return func(d *Ditherer) {
		d.seed = &seed
	}
}

// New returns a Ditherer resolving palettes through p.
func New(p palette.Provider, logger *log.Logger, options ...Option) *Ditherer {
	d := &Ditherer{
		palettes: palette.NewRegistry(p),
		logger:   logger,
		cache:    newCache(defaultCacheSize),
	}
	for _, o := range options {
		o(d)
	}
	return d
}

// Palette resolves the named palette. Any failure wraps
// dither.ErrInvalidPalette.
func (d *Ditherer) Palette(name string) (palette.Palette, error) {
	p, err := d.palettes.Palette(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dither.ErrInvalidPalette, err)
	}
	return p, nil
}

// Apply dithers m to the named palette using the named method. m is left
// untouched.
func (d *Ditherer) Apply(method string, m *matrix.Image, paletteName string, threshold float64) (*matrix.Image, error) {
	// Fail on the method before doing any palette work
	dm, err := dither.Lookup(method)
	if err != nil {
		return nil, err
	}

	p, err := d.Palette(paletteName)
	if err != nil {
		return nil, err
	}

	var opts []dither.Option
	if d.seed != nil {
		opts = append(opts, dither.WithSeed(*d.seed))
	}

	return dm.Apply(m, p, threshold, opts...)
}

// cacheKey hashes the pixels along with everything else that affects the
// result: the method, the threshold, the resolved palette colors and, for the
// stochastic methods, the seed.
func cacheKey(m *matrix.Image, s Settings, p palette.Palette, seed *uint64) string {
	h := sha1.New()
	var b [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(b[:], v)
		h.Write(b[:])
	}

	put(uint64(m.Width)<<32 | uint64(m.Height))
	for _, v := range m.Pix {
		put(math.Float64bits(v))
	}

	fmt.Fprintf(h, "%s\x00", s.Method)
	put(math.Float64bits(s.Threshold))

	put(uint64(len(p)))
	for _, c := range p {
		for _, v := range c {
			put(math.Float64bits(v))
		}
	}

	if seed != nil {
		h.Write([]byte{1})
		put(*seed)
	} else {
		h.Write([]byte{0})
	}

	return fmt.Sprintf("%X", h.Sum(nil))
}

// Process scales img, dithers it according to s and returns the result as
// an 8-bit image, paletted when the palette has no more than 256 colors.
func (d *Ditherer) Process(img image.Image, s Settings) (image.Image, error) {
	if img == nil {
		return nil, errors.New("ditherer: nil image")
	}

	dm, err := dither.Lookup(s.Method)
	if err != nil {
		return nil, err
	}

	p, err := d.Palette(s.Palette)
	if err != nil {
		return nil, err
	}

	stochastic := dm.Kind == dither.Random || dm.Kind == dither.BlockRandom

	var seed *uint64
	if stochastic {
		seed = d.seed
	}

	m := matrix.FromImage(matrix.Scale(img, s.Scale))
	key := cacheKey(m, s, p, seed)

	if d.cache != nil {
		if out, ok := d.cache.Get(key); ok {
			d.logger.Printf("Cache hit for %s/%s\n", s.Method, s.Palette)
			return encode(out, p)
		}
	}

	// Unseeded noise is different on every run so never persist it
	persist := d.store != nil && (!stochastic || d.seed != nil)

	if persist {
		out, err := d.store.FindResult(key)
		if err != nil {
			return nil, err
		}
		if out != nil {
			d.remember(key, out)
			return encode(out, p)
		}
	}

	var opts []dither.Option
	if d.seed != nil {
		opts = append(opts, dither.WithSeed(*d.seed))
	}

	out, err := dm.Apply(m, p, s.Threshold, opts...)
	if err != nil {
		return nil, err
	}

	if persist {
		if err := d.store.StoreResult(key, out); err != nil {
			return nil, err
		}
	}
	d.remember(key, out)

	return encode(out, p)
}

// encode converts a dithered frame into a paletted image, falling back to
// RGBA for palettes too large to index with a byte.
func encode(m *matrix.Image, p palette.Palette) (image.Image, error) {
	if len(p) > 256 {
		return m.RGBA(), nil
	}
	return m.ToPaletted(p.ColorPalette())
}

func (d *Ditherer) remember(key string, m *matrix.Image) {
	if d.cache != nil {
		d.cache.Add(key, m)
	}
}

// ClearCache empties the in-memory frame cache.
func (d *Ditherer) ClearCache() {
	if d.cache != nil {
		d.cache.Purge()
	}
}
