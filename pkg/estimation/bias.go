package estimation

import (
	"math"

	"phasepeak/internal/models"
)

// biasCutoff is the multiple of tolerance² beyond which biased samples are
// set to zero instead of evaluating the exponential.
const biasCutoff = 10

// biasField weights surface samples by their distance to the expected shift.
//
// The expected shift appears at one of two indices on the periodic surface:
// the direct index (moving-fixed)/spacing + start, or its mirror one period
// further along. Each axis uses whichever of the two is closer.
type biasField struct {
	direct []float64
	mirror []float64

	// factor is the (negative) exponent applied per squared index distance
	factor float64

	// cutoff is the squared distance beyond which samples are zeroed, 0 disables it
	cutoff float64
}

func newBiasField(s *models.Surface, fixed, moving models.Geometry, tolerance int) *biasField {
	dims := s.Dims()
	b := &biasField{
		direct: make([]float64, dims),
		mirror: make([]float64, dims),
	}

	imageSize2 := 0.0
	for d := 0; d < dims; d++ {
		adjustedSize := float64(s.Size[d] + s.Start[d])
		imageSize2 += adjustedSize * adjustedSize
		shift := (moving.Origin[d] - fixed.Origin[d]) / fixed.Spacing[d]
		b.direct[d] = shift + float64(s.Start[d])
		b.mirror[d] = shift + adjustedSize
	}

	if tolerance == 0 {
		// about half strength at a quarter of the image diagonal
		b.factor = -10.0 / imageSize2
	} else {
		tol2 := float64(tolerance) * float64(tolerance)
		b.factor = math.Log(0.9) / tol2
		b.cutoff = biasCutoff * tol2
	}
	return b
}

// distance2 returns the squared index distance of index to the expected shift
func (b *biasField) distance2(index []int) float64 {
	dist := 0.0
	for d, v := range index {
		x := float64(v)
		distDirect := (b.direct[d] - x) * (b.direct[d] - x)
		distMirror := (b.mirror[d] - x) * (b.mirror[d] - x)
		dist += math.Min(distDirect, distMirror)
	}
	return dist
}

func (b *biasField) apply(index []int, value float64) float64 {
	dist := b.distance2(index)
	if b.cutoff > 0 && dist > b.cutoff {
		return 0
	}
	return value * math.Exp(b.factor*dist)
}

// applyBiasField builds the adjusted surface: a copy of input in which every
// sample is damped according to its distance from the expected shift.
// The input is only read.
func applyBiasField(input *models.Surface, fixed, moving models.Geometry, tolerance, numCores int) *models.Surface {
	field := newBiasField(input, fixed, moving, tolerance)
	adjusted := input.CopyInformation()

	parallelizeRegion(len(input.Data), numCores, func(start, end int) {
		index := make([]int, input.Dims())
		for pos := start; pos < end; pos++ {
			input.IndexOf(pos, index)
			adjusted.Data[pos] = field.apply(index, input.Data[pos])
		}
	})

	return adjusted
}
