package estimation

import (
	"math"

	"phasepeak/internal/models"
)

// resolveOffset converts a continuous surface index into a physical offset.
// Every axis has a direct and a mirror interpretation one period apart; the
// one with the smaller magnitude wins, independently per axis.
func resolveOffset(index []float64, s *models.Surface, fixed, moving models.Geometry) []float64 {
	offset := make([]float64, len(index))
	for d, v := range index {
		shift := moving.Origin[d] - fixed.Origin[d]
		start := float64(s.Start[d])
		directOffset := shift - fixed.Spacing[d]*(v-start)
		mirrorOffset := shift - fixed.Spacing[d]*(v-(start+float64(s.Size[d])))
		if math.Abs(directOffset) <= math.Abs(mirrorOffset) {
			offset[d] = directOffset
		} else {
			offset[d] = mirrorOffset
		}
	}
	return offset
}
