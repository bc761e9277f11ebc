package dither

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernelsAreCausal(t *testing.T) {
	for _, k := range kernels {
		for _, tap := range k.taps {
			assert.True(t, tap.dy > 0 || (tap.dy == 0 && tap.dx > 0), "%s tap %+v points backwards", k.Name, tap)
			assert.Greater(t, tap.weight, 0.0, k.Name)
		}
		assert.LessOrEqual(t, k.Sum(), 1+kernelTolerance, k.Name)
	}
}

func TestFloydSteinbergTaps(t *testing.T) {
	k, err := LookupKernel("floyd_steinberg")
	require.NoError(t, err)
	assert.Equal(t, []tap{
		{dx: 1, dy: 0, weight: 7. / 16},
		{dx: -1, dy: 1, weight: 3. / 16},
		{dx: 0, dy: 1, weight: 5. / 16},
		{dx: 1, dy: 1, weight: 1. / 16},
	}, k.taps)
	assert.InDelta(t, 1.0, k.Sum(), 1e-12)
}

func TestAtkinsonTaps(t *testing.T) {
	k, err := LookupKernel("atkinson")
	require.NoError(t, err)
	assert.Equal(t, []tap{
		{dx: 1, dy: 0, weight: .125},
		{dx: 2, dy: 0, weight: .125},
		{dx: -1, dy: 1, weight: .125},
		{dx: 0, dy: 1, weight: .125},
		{dx: 1, dy: 1, weight: .125},
		{dx: 0, dy: 2, weight: .125},
	}, k.taps)
	assert.Equal(t, 0.75, k.Sum())
}

func TestFanSkipsZeroWeights(t *testing.T) {
	k, err := LookupKernel("fan")
	require.NoError(t, err)
	assert.Len(t, k.taps, 4)
	assert.Equal(t, tap{dx: -2, dy: 1, weight: 1. / 16}, k.taps[1])
	assert.Len(t, k.Rows()[1], 5)
}

func TestNewKernel(t *testing.T) {
	_, err := NewKernel("empty", nil)
	assert.Error(t, err)

	_, err = NewKernel("negative", [][]float64{{0.5}, {-0.1, 0.3, 0.1}})
	assert.Error(t, err)

	_, err = NewKernel("amplifying", [][]float64{{0.75}, {0.25, 0.25, 0.25}})
	assert.Error(t, err)

	k, err := NewKernel("right", [][]float64{{1}})
	require.NoError(t, err)
	assert.Equal(t, []tap{{dx: 1, dy: 0, weight: 1}}, k.taps)
}

func TestLookupKernelUnknown(t *testing.T) {
	_, err := LookupKernel("bogus")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestThresholdMaps(t *testing.T) {
	sizes := map[string]int{"bayer4x4": 4, "bayer8x8": 8, "cluster4x4": 4, "cluster8x8": 8}
	for name, size := range sizes {
		m, err := LookupThresholdMap(name)
		require.NoError(t, err)
		assert.Equal(t, size, m.Size)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				assert.Equal(t, m.At(x, y), m.At(x+size, y+3*size))
				assert.GreaterOrEqual(t, m.At(x, y), 0.0)
				assert.LessOrEqual(t, m.At(x, y), 1.0)
			}
		}
	}

	m, err := LookupThresholdMap("bayer4x4")
	require.NoError(t, err)
	assert.Equal(t, 9./17, m.At(1, 0))
	assert.Equal(t, 16./17, m.At(0, 3))

	_, err = LookupThresholdMap("bayer3x3")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestNewThresholdMap(t *testing.T) {
	_, err := NewThresholdMap("three", 9, [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}})
	assert.Error(t, err)

	_, err = NewThresholdMap("ragged", 4, [][]int{{0, 1}, {2}})
	assert.Error(t, err)

	_, err = NewThresholdMap("zero", 0, [][]int{{0, 1}, {2, 3}})
	assert.Error(t, err)

	m, err := NewThresholdMap("two", 4, [][]int{{0, 2}, {3, 1}})
	require.NoError(t, err)
	assert.Equal(t, 0.75, m.At(2, 1))
}
