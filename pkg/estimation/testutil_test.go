package estimation

import (
	"math/rand"

	"phasepeak/internal/models"
)

// unitGeometry returns zero origin and unit spacing in dims dimensions
func unitGeometry(dims int) models.Geometry {
	g := models.Geometry{
		Origin:  make([]float64, dims),
		Spacing: make([]float64, dims),
	}
	for d := range g.Spacing {
		g.Spacing[d] = 1
	}
	return g
}

// filledSurface creates a surface where every sample has the same value
func filledSurface(value float64, size ...int) *models.Surface {
	s := models.NewSurface(size...)
	for i := range s.Data {
		s.Data[i] = value
	}
	return s
}

// randomSurface creates a reproducible noisy surface
func randomSurface(seed int64, size ...int) *models.Surface {
	rng := rand.New(rand.NewSource(seed))
	s := models.NewSurface(size...)
	for i := range s.Data {
		s.Data[i] = rng.Float64()
	}
	return s
}

// fakeFinder returns canned maxima and records the requested count
type fakeFinder struct {
	values    []float64
	indices   [][]int
	err       error
	requested int
}

func (f *fakeFinder) Maxima(s *models.Surface, n int) ([]float64, [][]int, error) {
	f.requested = n
	return f.values, f.indices, f.err
}
