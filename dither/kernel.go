package dither

import (
	"errors"
	"fmt"
)

// kernelTolerance allows for rounding when summing kernel coefficients.
const kernelTolerance = 1e-9

type tap struct {
	dx, dy int
	weight float64
}

// Kernel is an error diffusion matrix.
//
// The first row lists the weights for the pixels to the right of the current
// one, starting at x+1. Each following row i lists the weights for row y+i,
// centred on x so that entry j targets x+j-len(row)/2.
type Kernel struct {
	Name string
	rows [][]float64
	taps []tap
}

// NewKernel builds a kernel from its rows. Weights must be non-negative and
// sum to no more than one.
func NewKernel(name string, rows [][]float64) (*Kernel, error) {
	if len(rows) == 0 {
		return nil, errors.New("dither: kernel has no rows")
	}

	k := &Kernel{
		Name: name,
		rows: make([][]float64, len(rows)),
	}

	var sum float64
	for dy, row := range rows {
		k.rows[dy] = append([]float64(nil), row...)

		offset := len(row) / 2
		if dy == 0 {
			// Forward row starts at x+1
			offset = -1
		}

		for j, w := range row {
			if w < 0 {
				return nil, fmt.Errorf("dither: kernel %q has negative weight %v", name, w)
			}
			if w == 0 {
				continue
			}
			sum += w
			k.taps = append(k.taps, tap{dx: j - offset, dy: dy, weight: w})
		}
	}

	if sum > 1+kernelTolerance {
		return nil, fmt.Errorf("dither: kernel %q weights sum to %v", name, sum)
	}

	return k, nil
}

func mustKernel(name string, rows [][]float64) *Kernel {
	k, err := NewKernel(name, rows)
	if err != nil {
		panic(err)
	}
	return k
}

// Rows returns a copy of the kernel rows.
func (k *Kernel) Rows() [][]float64 {
	rows := make([][]float64, len(k.rows))
	for i, row := range k.rows {
		rows[i] = append([]float64(nil), row...)
	}
	return rows
}

// Sum returns the total of all weights.
func (k *Kernel) Sum() (sum float64) {
	for _, t := range k.taps {
		sum += t.weight
	}
	return
}

var kernels = []*Kernel{
	mustKernel("floyd_steinberg", [][]float64{
		{7. / 16},
		{3. / 16, 5. / 16, 1. / 16},
	}),
	mustKernel("jajuni", [][]float64{
		{7. / 48, 5. / 48},
		{1. / 16, 5. / 48, 7. / 48, 5. / 48, 1. / 16},
		{1. / 48, 1. / 16, 5. / 48, 1. / 16, 1. / 48},
	}),
	mustKernel("fan", [][]float64{
		{7. / 16},
		{1. / 16, 3. / 16, 5. / 16, 0, 0},
	}),
	mustKernel("stucki", [][]float64{
		{4. / 21, 2. / 21},
		{1. / 21, 2. / 21, 4. / 21, 2. / 21, 1. / 21},
		{1. / 42, 1. / 21, 2. / 21, 1. / 21, 1. / 42},
	}),
	mustKernel("burkes", [][]float64{
		{.25, .125},
		{.0625, .125, .25, .125, .0625},
	}),
	mustKernel("sierra", [][]float64{
		{5. / 32, 3. / 32},
		{1. / 16, 1. / 8, 5. / 32, 1. / 8, 1. / 16},
		{1. / 16, 3. / 32, 1. / 16},
	}),
	mustKernel("two_row_sierra", [][]float64{
		{1. / 4, 3. / 16},
		{1. / 16, 1. / 8, 3. / 16, 1. / 8, 1. / 16},
	}),
	mustKernel("sierra_lite", [][]float64{
		{0.5},
		{0.25, 0.25, 0},
	}),
	mustKernel("atkinson", [][]float64{
		{0.125, 0.125},
		{0.125, 0.125, 0.125},
		{0.125},
	}),
}

// LookupKernel returns the named built-in kernel.
func LookupKernel(name string) (*Kernel, error) {
	for _, k := range kernels {
		if k.Name == name {
			return k, nil
		}
	}
	return nil, fmt.Errorf("%w: kernel %q", ErrUnknownMethod, name)
}
