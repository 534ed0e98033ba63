package models

import (
	"fmt"
)

// Geometry holds the physical placement of one image
type Geometry struct {
	// Origin is the physical position of the first sample, per axis
	Origin []float64

	// Spacing is the physical distance between adjacent samples, per axis
	Spacing []float64
}

// Dims returns the dimensionality described by the geometry
func (g Geometry) Dims() int {
	return len(g.Origin)
}

// Image is a scalar pixel grid loaded from disk together with its geometry
type Image struct {
	// Data holds the pixel values with axis 0 varying fastest
	Data []float64

	// Size is the number of samples along each axis
	Size []int

	Geometry
}

// Surface represents a correlation surface produced by the phase correlation step.
// It is logically periodic: index arithmetic wraps with period Size[d] on every axis.
type Surface struct {
	// Data is the N-dimensional grid as a 1D array, axis 0 varying fastest
	// (for 2D data this is the usual y*width + x layout)
	Data []float64

	// Size is the extent of the grid along each axis
	Size []int

	// Start is the index of the first sample along each axis
	Start []int

	// Spacing and Origin are inherited from the fixed image
	Spacing []float64
	Origin  []float64
}

// NewSurface allocates a zero-filled surface with start index 0,
// unit spacing and zero origin.
func NewSurface(size ...int) *Surface {
	n := 1
	for _, s := range size {
		n *= s
	}
	dims := len(size)
	s := &Surface{
		Data:    make([]float64, n),
		Size:    append([]int(nil), size...),
		Start:   make([]int, dims),
		Spacing: make([]float64, dims),
		Origin:  make([]float64, dims),
	}
	for d := range s.Spacing {
		s.Spacing[d] = 1
	}
	return s
}

// Dims returns the number of axes
func (s *Surface) Dims() int {
	return len(s.Size)
}

// Len returns the number of samples described by Size
func (s *Surface) Len() int {
	n := 1
	for _, v := range s.Size {
		n *= v
	}
	return n
}

// Strides returns the flat distance between neighbors along each axis
func (s *Surface) Strides() []int {
	strides := make([]int, len(s.Size))
	step := 1
	for d, v := range s.Size {
		strides[d] = step
		step *= v
	}
	return strides
}

// Offset converts a grid index (including Start) into a position in Data.
// The index must be inside the surface.
func (s *Surface) Offset(index []int) int {
	pos := 0
	step := 1
	for d, v := range s.Size {
		pos += (index[d] - s.Start[d]) * step
		step *= v
	}
	return pos
}

// IndexOf writes the grid index of the flat position pos into dst
func (s *Surface) IndexOf(pos int, dst []int) {
	for d, v := range s.Size {
		dst[d] = pos%v + s.Start[d]
		pos /= v
	}
}

// Inside reports whether index lies within the grid bounds
func (s *Surface) Inside(index []int) bool {
	for d, v := range s.Size {
		if index[d] < s.Start[d] || index[d] >= s.Start[d]+v {
			return false
		}
	}
	return true
}

// At returns the sample at index
func (s *Surface) At(index []int) float64 {
	return s.Data[s.Offset(index)]
}

// Set stores value at index
func (s *Surface) Set(index []int, value float64) {
	s.Data[s.Offset(index)] = value
}

// CopyInformation returns a surface with the same geometry and freshly
// allocated, zero-filled data.
func (s *Surface) CopyInformation() *Surface {
	return &Surface{
		Data:    make([]float64, len(s.Data)),
		Size:    append([]int(nil), s.Size...),
		Start:   append([]int(nil), s.Start...),
		Spacing: append([]float64(nil), s.Spacing...),
		Origin:  append([]float64(nil), s.Origin...),
	}
}

// Clone returns a deep copy
func (s *Surface) Clone() *Surface {
	c := s.CopyInformation()
	copy(c.Data, s.Data)
	return c
}

// Validate checks that the surface fields agree with each other
func (s *Surface) Validate() error {
	dims := len(s.Size)
	if dims == 0 {
		return fmt.Errorf("surface has no dimensions")
	}
	if len(s.Start) != dims {
		return fmt.Errorf("start index has %d components, expected %d", len(s.Start), dims)
	}
	for d, v := range s.Size {
		if v <= 0 {
			return fmt.Errorf("surface size along axis %d must be positive, got %d", d, v)
		}
	}
	if len(s.Data) != s.Len() {
		return fmt.Errorf("surface holds %d samples, size %v requires %d", len(s.Data), s.Size, s.Len())
	}
	return nil
}
