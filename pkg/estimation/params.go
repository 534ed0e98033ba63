package estimation

import (
	"fmt"
	"math"
	"runtime"
	"strings"
)

// InterpolationMethod selects how a discrete peak is refined to sub-pixel precision
type InterpolationMethod int

const (
	// InterpolationNone keeps pixel precision
	InterpolationNone InterpolationMethod = iota
	// InterpolationParabolic fits a parabola through the peak and its two neighbors
	InterpolationParabolic
	// InterpolationCosine fits a cosine through the peak and its two neighbors
	InterpolationCosine
)

func (m InterpolationMethod) String() string {
	switch m {
	case InterpolationNone:
		return "none"
	case InterpolationParabolic:
		return "parabolic"
	case InterpolationCosine:
		return "cosine"
	default:
		return fmt.Sprintf("InterpolationMethod(%d)", int(m))
	}
}

// ParseInterpolationMethod converts a config or flag value into an InterpolationMethod
func ParseInterpolationMethod(s string) (InterpolationMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return InterpolationNone, nil
	case "parabolic", "":
		return InterpolationParabolic, nil
	case "cosine":
		return InterpolationCosine, nil
	default:
		return InterpolationNone, fmt.Errorf("unknown interpolation method %q (must be none, parabolic or cosine)", s)
	}
}

// Params holds the estimator configuration. It is read-only for the
// lifetime of an Estimator.
type Params struct {
	// Interpolation selects the sub-pixel refinement of each peak
	Interpolation InterpolationMethod

	// MergePeaks is the maximum Chebyshev distance between maxima that are
	// merged into one peak. Zero disables merging.
	MergePeaks int

	// ZeroSuppression is the aggressiveness (0-100) with which the trivial
	// zero shift and its axes are damped. Zero disables suppression.
	ZeroSuppression float64

	// PixelDistanceTolerance is the expected maximum translation in pixels.
	// Zero selects a scale derived from the surface size.
	PixelDistanceTolerance int

	// ConfidenceScale multiplies every reported confidence. It has no effect on ranking.
	// Values that are not positive and finite select 1.
	ConfidenceScale float64

	// NumCores is the number of workers used for the per-sample stages.
	// Zero uses every available CPU.
	NumCores int

	// SaveIntermediaryResults dumps the adjusted surfaces to IntermediaryDir
	SaveIntermediaryResults bool

	// IntermediaryDir is where the adjusted surfaces are written
	IntermediaryDir string
}

// DefaultParams returns the estimator defaults
func DefaultParams() Params {
	return Params{
		Interpolation:          InterpolationParabolic,
		MergePeaks:             1,
		ZeroSuppression:        5,
		PixelDistanceTolerance: 0,
		ConfidenceScale:        1,
		NumCores:               runtime.NumCPU(),
		IntermediaryDir:        "intermediary_results",
	}
}

// normalized clamps the parameters into their valid ranges
func (p Params) normalized() Params {
	if p.MergePeaks < 0 {
		p.MergePeaks = 0
	}
	if p.ZeroSuppression < 0 {
		p.ZeroSuppression = 0
	}
	if p.ZeroSuppression > 100 {
		p.ZeroSuppression = 100
	}
	if p.PixelDistanceTolerance < 0 {
		p.PixelDistanceTolerance = 0
	}
	if !(p.ConfidenceScale > 0) || math.IsInf(p.ConfidenceScale, 1) {
		p.ConfidenceScale = 1
	}
	if p.NumCores < 1 {
		p.NumCores = runtime.NumCPU()
	}
	return p
}
