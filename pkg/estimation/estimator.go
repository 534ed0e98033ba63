// Package estimation turns a phase correlation surface into a ranked list of
// sub-pixel translation candidates.
//
// An estimate runs these stages, each consuming the previous one's output:
//  1. bias the surface towards the geometrically expected shift
//  2. damp the trivial zero shift and its axes
//  3. search the top local maxima (MaximaFinder)
//  4. drop non-positive maxima and merge maxima of one blurred peak
//  5. keep the requested number of candidates
//  6. refine every candidate to sub-pixel precision
//  7. convert every refined index to a physical offset, choosing between
//     the direct and the mirror interpretation per axis
//
// Stages 1 and 2 are data parallel over disjoint regions of the surface.
package estimation

import (
	"errors"
	"fmt"
	"log/slog"

	"phasepeak/internal/models"
	"phasepeak/pkg/maxima"
)

var (
	// ErrInvalidInput reports a surface or geometry that cannot be processed
	ErrInvalidInput = errors.New("invalid estimator input")

	// ErrInconsistentMaxima reports a MaximaFinder that returned a different
	// number of values and indices
	ErrInconsistentMaxima = errors.New("maxima and their indices must have the same number of elements")

	// ErrInvalidMaximum reports a MaximaFinder index that does not address a
	// sample of the surface
	ErrInvalidMaximum = errors.New("maximum index outside the surface")
)

// MaximaFinder returns the n largest local maxima of a surface, as values in
// descending order and the grid indices they were found at.
type MaximaFinder interface {
	Maxima(s *models.Surface, n int) ([]float64, [][]int, error)
}

// Result holds the estimated offsets and their confidences, most confident first
type Result struct {
	Offsets     [][]float64
	Confidences []float64
}

// Estimator estimates translations from phase correlation surfaces. It keeps
// no state between calls and is safe for concurrent use.
type Estimator struct {
	params Params
	finder MaximaFinder
	log    *slog.Logger
}

// NewEstimator creates an estimator. A nil finder selects maxima.Finder and
// a nil logger selects slog.Default().
func NewEstimator(params Params, finder MaximaFinder, logger *slog.Logger) *Estimator {
	if finder == nil {
		finder = maxima.Finder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{
		params: params.normalized(),
		finder: finder,
		log:    logger,
	}
}

// Params returns the effective parameters
func (e *Estimator) Params() Params {
	return e.params
}

// Estimate returns up to count translation candidates for moving relative to
// fixed. surface is the phase correlation of the two images sampled on the
// fixed image's spacing; it is not modified.
//
// A nil surface yields a single zero offset with zero confidence.
func (e *Estimator) Estimate(surface *models.Surface, fixed, moving models.Geometry, count int) (*Result, error) {
	if surface == nil {
		return &Result{
			Offsets:     [][]float64{make([]float64, fixed.Dims())},
			Confidences: []float64{0},
		}, nil
	}

	if err := validateInput(surface, fixed, moving, count); err != nil {
		return nil, err
	}

	adjusted := applyBiasField(surface, fixed, moving, e.params.PixelDistanceTolerance, e.params.NumCores)
	e.log.Debug("biased correlation surface",
		"size", surface.Size,
		"tolerance", e.params.PixelDistanceTolerance,
		"workers", e.params.NumCores)
	e.saveIntermediaryResult("01_adjusted", adjusted)

	if e.params.ZeroSuppression > 0 {
		suppressZeroShift(adjusted, e.params.ZeroSuppression, e.params.NumCores)
		e.log.Debug("suppressed zero shift", "aggressiveness", e.params.ZeroSuppression)
		e.saveIntermediaryResult("02_adjusted_zero_suppressed", adjusted)
	}

	request := maximaRequest(count, surface.Dims(), e.params.MergePeaks)
	values, indices, err := e.finder.Maxima(adjusted, request)
	if err != nil {
		return nil, err
	}
	if len(values) != len(indices) {
		return nil, fmt.Errorf("%w: got %d values and %d indices", ErrInconsistentMaxima, len(values), len(indices))
	}
	for i, index := range indices {
		if len(index) != adjusted.Dims() {
			return nil, fmt.Errorf("%w: index %d has %d components, surface has %d axes",
				ErrInvalidMaximum, i, len(index), adjusted.Dims())
		}
		if !adjusted.Inside(index) {
			return nil, fmt.Errorf("%w: index %d at %v lies outside the surface", ErrInvalidMaximum, i, index)
		}
	}

	peaks := newCandidates(values, indices)
	peaks.dropNonPositive()
	found := peaks.Len()
	peaks.merge(adjusted.Size, e.params.MergePeaks)
	peaks.truncate(count)
	e.log.Debug("selected peaks",
		"requested", request,
		"positive", found,
		"kept", peaks.Len())

	result := &Result{
		Offsets:     make([][]float64, peaks.Len()),
		Confidences: make([]float64, peaks.Len()),
	}
	for m := range peaks.confidences {
		refined := refinePeak(adjusted, peaks.indices[m], e.params.Interpolation, m > 0)
		result.Offsets[m] = resolveOffset(refined, adjusted, fixed, moving)
		result.Confidences[m] = peaks.confidences[m] * e.params.ConfidenceScale
	}

	return result, nil
}

func validateInput(surface *models.Surface, fixed, moving models.Geometry, count int) error {
	if err := surface.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	dims := surface.Dims()
	if len(fixed.Origin) != dims || len(fixed.Spacing) != dims {
		return fmt.Errorf("%w: fixed geometry must have %d components, got origin %d spacing %d",
			ErrInvalidInput, dims, len(fixed.Origin), len(fixed.Spacing))
	}
	if len(moving.Origin) != dims {
		return fmt.Errorf("%w: moving origin must have %d components, got %d", ErrInvalidInput, dims, len(moving.Origin))
	}
	for d, sp := range fixed.Spacing {
		if !(sp > 0) {
			return fmt.Errorf("%w: spacing along axis %d must be positive, got %g", ErrInvalidInput, d, sp)
		}
	}
	if count < 1 {
		return fmt.Errorf("%w: offset count must be at least 1, got %d", ErrInvalidInput, count)
	}
	return nil
}
