package dither

import (
	"fmt"
	"math/bits"
)

// ThresholdMap is a square matrix of biases tiled over the image.
type ThresholdMap struct {
	Name   string
	Size   int
	values []float64
}

// NewThresholdMap builds a map from integer levels, each divided by scale.
// The side must be a power of two.
func NewThresholdMap(name string, scale float64, levels [][]int) (*ThresholdMap, error) {
	n := len(levels)
	if n == 0 || bits.OnesCount(uint(n)) != 1 {
		return nil, fmt.Errorf("dither: threshold map %q size %d is not a power of two", name, n)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("dither: threshold map %q has scale %v", name, scale)
	}

	m := &ThresholdMap{
		Name:   name,
		Size:   n,
		values: make([]float64, 0, n*n),
	}
	for y, row := range levels {
		if len(row) != n {
			return nil, fmt.Errorf("dither: threshold map %q row %d is not %d wide", name, y, n)
		}
		for _, v := range row {
			m.values = append(m.values, float64(v)/scale)
		}
	}
	return m, nil
}

func mustThresholdMap(name string, scale float64, levels [][]int) *ThresholdMap {
	m, err := NewThresholdMap(name, scale, levels)
	if err != nil {
		panic(err)
	}
	return m
}

// At returns the bias for image position (x, y), tiling the map in both
// directions.
func (m *ThresholdMap) At(x, y int) float64 {
	return m.values[(y%m.Size)*m.Size+x%m.Size]
}

var thresholdMaps = []*ThresholdMap{
	mustThresholdMap("bayer4x4", 17, [][]int{
		{1, 9, 3, 11},
		{13, 5, 15, 7},
		{4, 12, 2, 10},
		{16, 8, 14, 6},
	}),
	mustThresholdMap("bayer8x8", 65, [][]int{
		{0, 48, 12, 60, 3, 51, 15, 63},
		{32, 16, 44, 28, 35, 19, 47, 31},
		{8, 56, 4, 52, 11, 59, 7, 55},
		{40, 24, 36, 20, 43, 27, 39, 23},
		{2, 50, 14, 62, 1, 49, 13, 61},
		{34, 18, 46, 30, 33, 17, 45, 29},
		{10, 58, 6, 54, 9, 57, 5, 53},
		{42, 26, 38, 22, 41, 25, 37, 21},
	}),
	mustThresholdMap("cluster4x4", 15, [][]int{
		{12, 5, 6, 13},
		{4, 0, 1, 7},
		{11, 3, 2, 8},
		{15, 10, 9, 14},
	}),
	mustThresholdMap("cluster8x8", 64, [][]int{
		{24, 10, 12, 26, 35, 47, 49, 37},
		{8, 0, 2, 14, 45, 59, 61, 51},
		{22, 6, 4, 16, 43, 57, 63, 53},
		{30, 20, 18, 28, 33, 41, 55, 39},
		{34, 46, 48, 36, 25, 11, 13, 27},
		{44, 58, 60, 50, 9, 1, 3, 15},
		{42, 56, 62, 52, 23, 7, 5, 17},
		{32, 40, 54, 38, 31, 21, 19, 29},
	}),
}

// LookupThresholdMap returns the named built-in threshold map.
func LookupThresholdMap(name string) (*ThresholdMap, error) {
	for _, m := range thresholdMaps {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: threshold map %q", ErrUnknownMethod, name)
}
