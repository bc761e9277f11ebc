package dither

import (
	"fmt"
	"math/rand/v2"

	"github.com/bodgit/ditherer/matrix"
	"github.com/bodgit/ditherer/palette"
)

// Kind identifies a family of dithering method.
type Kind int

const (
	// Threshold compares luma against the threshold; equal is black.
	Threshold Kind = iota
	// Random adds per-pixel Gaussian noise offset by threshold-0.5.
	Random
	// BlockRandom adds Gaussian noise offset by threshold-0.5 to block
	// averages.
	BlockRandom
	// Ordered scales each pixel by 1 + map bias + threshold-0.5.
	Ordered
	// Diffusion scales each pixel by 2*threshold before matching and
	// diffuses the unscaled error.
	Diffusion
)

var kindNames = [...]string{"threshold", "random", "block_random", "ordered", "diffusion"}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Method is a named dithering method. Ordered methods carry their threshold
// map and diffusion methods their kernel.
type Method struct {
	Name   string
	Kind   Kind
	Map    *ThresholdMap
	Kernel *Kernel
}

var methods = buildMethods()

func buildMethods() []Method {
	m := []Method{
		{Name: "threshold", Kind: Threshold},
		{Name: "random", Kind: Random},
		{Name: "block_random", Kind: BlockRandom},
	}
	for _, tm := range thresholdMaps {
		m = append(m, Method{Name: tm.Name, Kind: Ordered, Map: tm})
	}
	for _, k := range kernels {
		m = append(m, Method{Name: k.Name, Kind: Diffusion, Kernel: k})
	}
	return m
}

// Methods returns the names of all methods in presentation order.
func Methods() []string {
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.Name
	}
	return names
}

// Lookup returns the named method.
func Lookup(name string) (Method, error) {
	for _, m := range methods {
		if m.Name == name {
			return m, nil
		}
	}
	return Method{}, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

type options struct {
	seed   uint64
	seeded bool
}

// Option configures a call to Apply.
type Option func(*options)

// WithSeed fixes the seed used by the stochastic methods so their output is
// reproducible. Without it a seed is drawn from the runtime's entropy.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// Apply dithers m to the palette p using this method. m is not modified and
// the result is a new image of the same size whose every pixel is an entry
// of p.
func (m Method) Apply(img *matrix.Image, p palette.Palette, threshold float64, opts ...Option) (*matrix.Image, error) {
	if err := checkInput(img, p); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		o.seed = rand.Uint64()
	}

	threshold = normalize(threshold)

	switch m.Kind {
	case Threshold:
		return thresholdQuantize(img, p, threshold), nil
	case Random:
		return random(img, p, threshold, o.seed), nil
	case BlockRandom:
		return blockRandom(img, p, threshold, o.seed), nil
	case Ordered:
		if m.Map == nil {
			return nil, fmt.Errorf("%w: %q has no threshold map", ErrUnknownMethod, m.Name)
		}
		return ordered(img, p, m.Map, threshold), nil
	case Diffusion:
		if m.Kernel == nil {
			return nil, fmt.Errorf("%w: %q has no kernel", ErrUnknownMethod, m.Name)
		}
		return diffuse(img, p, m.Kernel, threshold), nil
	default:
		return nil, fmt.Errorf("%w: %q has kind %v", ErrUnknownMethod, m.Name, m.Kind)
	}
}

// Apply looks up the named method and applies it.
func Apply(method string, img *matrix.Image, p palette.Palette, threshold float64, opts ...Option) (*matrix.Image, error) {
	m, err := Lookup(method)
	if err != nil {
		return nil, err
	}
	return m.Apply(img, p, threshold, opts...)
}
