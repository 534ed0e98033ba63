// Package maxima finds the largest local maxima of a surface.
package maxima

import (
	"fmt"
	"math"
	"sort"

	"phasepeak/internal/models"
)

// Finder reports the n largest local maxima of a surface. A sample is a
// local maximum when none of its in-bounds neighbors (the full 3^N-1
// neighborhood) is larger and no equal neighbor precedes it in memory order,
// so a plateau yields a single maximum. NaN samples are ignored.
type Finder struct{}

type peak struct {
	value float64
	pos   int
}

// Maxima returns the values of the n largest local maxima in descending
// order and their grid indices. Ties keep memory order.
func (Finder) Maxima(s *models.Surface, n int) ([]float64, [][]int, error) {
	if n < 0 {
		return nil, nil, fmt.Errorf("maxima count must not be negative, got %d", n)
	}
	if s == nil {
		return nil, nil, fmt.Errorf("no surface to search")
	}
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	dims := s.Dims()
	displacements := neighborhood(dims)
	strides := s.Strides()

	var peaks []peak
	index := make([]int, dims)
	neighbor := make([]int, dims)
	for pos, value := range s.Data {
		if math.IsNaN(value) {
			continue
		}
		s.IndexOf(pos, index)
		if isLocalMaximum(s, pos, value, index, neighbor, displacements, strides) {
			peaks = append(peaks, peak{value: value, pos: pos})
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].value > peaks[j].value
	})
	if len(peaks) > n {
		peaks = peaks[:n]
	}

	values := make([]float64, len(peaks))
	indices := make([][]int, len(peaks))
	for i, p := range peaks {
		values[i] = p.value
		indices[i] = make([]int, dims)
		s.IndexOf(p.pos, indices[i])
	}
	return values, indices, nil
}

func isLocalMaximum(s *models.Surface, pos int, value float64, index, neighbor []int, displacements [][]int, strides []int) bool {
	for _, disp := range displacements {
		q := pos
		for d := range index {
			neighbor[d] = index[d] + disp[d]
			q += disp[d] * strides[d]
		}
		if !s.Inside(neighbor) {
			continue
		}
		w := s.Data[q]
		if w > value || (w == value && q < pos) {
			return false
		}
	}
	return true
}

// neighborhood lists every displacement in {-1,0,1}^dims except the origin
func neighborhood(dims int) [][]int {
	total := 1
	for d := 0; d < dims; d++ {
		total *= 3
	}

	displacements := make([][]int, 0, total-1)
	for i := 0; i < total; i++ {
		disp := make([]int, dims)
		zero := true
		k := i
		for d := 0; d < dims; d++ {
			disp[d] = k%3 - 1
			k /= 3
			if disp[d] != 0 {
				zero = false
			}
		}
		if !zero {
			displacements = append(displacements, disp)
		}
	}
	return displacements
}
