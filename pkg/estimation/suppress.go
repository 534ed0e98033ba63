package estimation

import (
	"phasepeak/internal/models"
)

// zeroNeighborhood is the city-block radius around the zero index that is
// always suppressed, in case the zero peak is blurred.
const zeroNeighborhood = 4

// zeroDistance returns the wrap-aware city-block distance of index from the
// start index, and whether any coordinate lies on a zero line/sheet.
func zeroDistance(s *models.Surface, index []int) (int, bool) {
	dist := 0
	onAxis := false
	for d, v := range index {
		distD := v - s.Start[d]
		if distD > s.Size[d]/2 {
			distD = s.Size[d] - distD
		}
		dist += distD
		if v == s.Start[d] {
			onAxis = true
		}
	}
	return dist, onAxis
}

// suppressZeroShift damps, in place, the neighborhood of the zero shift and
// the axis-aligned lines through it. aggressiveness <= 0 leaves s untouched.
func suppressZeroShift(s *models.Surface, aggressiveness float64, numCores int) {
	if aggressiveness <= 0 {
		return
	}

	parallelizeRegion(len(s.Data), numCores, func(start, end int) {
		index := make([]int, s.Dims())
		for pos := start; pos < end; pos++ {
			s.IndexOf(pos, index)
			dist, onAxis := zeroDistance(s, index)
			if dist >= zeroNeighborhood && !onAxis {
				continue
			}
			// shifted by 10 to avoid the steep initial rise of x/(1+x)
			d := float64(dist)
			s.Data[pos] *= (d + 10) / (aggressiveness + d + 10)
		}
	})
}
