package estimation

import (
	"math"

	"phasepeak/internal/models"
)

const (
	// machineEpsilon is the float64 unit round-off used to keep the cosine
	// ratio strictly inside (-1, 1)
	machineEpsilon = 0x1p-52

	// flatTolerance bounds the parabola curvature, relative to the sample
	// magnitudes, below which the neighborhood is treated as flat
	flatTolerance = 1e-12
)

// refinePeak returns the continuous index of the peak at index. Each axis is
// refined independently from the samples at -1, 0 and +1 along it; axes
// whose neighbors fall outside the surface, or whose fit is degenerate, keep
// the integer coordinate. clampRatio limits the cosine fit to the measured
// envelope and is false only for the most confident candidate.
func refinePeak(s *models.Surface, index []int, method InterpolationMethod, clampRatio bool) []float64 {
	refined := make([]float64, len(index))
	for d, v := range index {
		refined[d] = float64(v)
	}
	if method == InterpolationNone {
		return refined
	}

	y1 := s.At(index)
	neighbor := append([]int(nil), index...)
	for d := range index {
		neighbor[d] = index[d] - 1
		if !s.Inside(neighbor) {
			neighbor[d] = index[d]
			continue
		}
		y0 := s.At(neighbor)

		neighbor[d] = index[d] + 1
		if !s.Inside(neighbor) {
			neighbor[d] = index[d]
			continue
		}
		y2 := s.At(neighbor)
		neighbor[d] = index[d]

		var delta float64
		var ok bool
		switch method {
		case InterpolationParabolic:
			delta, ok = parabolicOffset(y0, y1, y2)
		case InterpolationCosine:
			delta, ok = cosineOffset(y0, y1, y2, clampRatio)
		}
		if ok {
			refined[d] += delta
		}
	}
	return refined
}

// parabolicOffset returns the vertex of the parabola through (-1, y0),
// (0, y1), (1, y2). ok is false for a flat or inflected neighborhood.
func parabolicOffset(y0, y1, y2 float64) (float64, bool) {
	denom := 2 * (y0 - 2*y1 + y2)
	scale := math.Abs(y0) + math.Abs(y1) + math.Abs(y2)
	if denom == 0 || math.Abs(denom) <= flatTolerance*scale {
		return 0, false
	}
	delta := (y0 - y2) / denom
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, false
	}
	return delta, true
}

// cosineOffset fits y = A*cos(omega*x + theta) through the three samples.
// Unclamped ratios outside [-1, 1] make the fit undefined and report ok=false.
func cosineOffset(y0, y1, y2 float64, clampRatio bool) (float64, bool) {
	if y1 == 0 {
		return 0, false
	}
	ratio := (y0 + y2) / (2 * y1)
	if clampRatio {
		ratio = math.Min(ratio, 1.0-machineEpsilon)
		ratio = math.Max(ratio, -1.0+machineEpsilon)
	}
	omega := math.Acos(ratio)
	theta := math.Atan((y0 - y2) / (2 * y1 * math.Sin(omega)))
	delta := -theta / omega / math.Pi
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, false
	}
	return delta, true
}
