// Package correlation computes phase correlation surfaces of two images.
package correlation

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"

	"phasepeak/internal/models"
)

// magnitudeFloor is the cross-power magnitude below which a frequency is
// treated as carrying no phase information
const magnitudeFloor = 1e-12

// PhaseCorrelation returns the phase correlation surface of two equally sized
// images. If moving is fixed translated by s samples (circularly), the
// surface peaks at index -s modulo the image size. The surface inherits the
// fixed image's spacing and origin and starts at index 0.
func PhaseCorrelation(fixed, moving *models.Image) (*models.Surface, error) {
	if fixed == nil || moving == nil {
		return nil, fmt.Errorf("both images are required")
	}
	if err := checkImage(fixed); err != nil {
		return nil, fmt.Errorf("fixed image: %w", err)
	}
	if err := checkImage(moving); err != nil {
		return nil, fmt.Errorf("moving image: %w", err)
	}
	if len(fixed.Size) != len(moving.Size) {
		return nil, fmt.Errorf("images have different dimensionality: %d and %d", len(fixed.Size), len(moving.Size))
	}
	for d := range fixed.Size {
		if fixed.Size[d] != moving.Size[d] {
			return nil, fmt.Errorf("image sizes differ: %v and %v", fixed.Size, moving.Size)
		}
	}

	f := toComplex(fixed.Data)
	m := toComplex(moving.Data)
	fftND(f, fixed.Size, false)
	fftND(m, moving.Size, false)

	// normalized cross-power spectrum
	for i := range f {
		c := f[i] * cmplx.Conj(m[i])
		mag := cmplx.Abs(c)
		if mag > magnitudeFloor {
			f[i] = c / complex(mag, 0)
		} else {
			f[i] = 0
		}
	}

	fftND(f, fixed.Size, true)

	surface := models.NewSurface(fixed.Size...)
	for i, c := range f {
		surface.Data[i] = real(c)
	}
	floats.Scale(1/float64(len(f)), surface.Data)

	if len(fixed.Spacing) == len(fixed.Size) {
		copy(surface.Spacing, fixed.Spacing)
	}
	if len(fixed.Origin) == len(fixed.Size) {
		copy(surface.Origin, fixed.Origin)
	}
	return surface, nil
}

func checkImage(img *models.Image) error {
	if len(img.Size) == 0 {
		return fmt.Errorf("image has no dimensions")
	}
	n := 1
	for d, v := range img.Size {
		if v <= 0 {
			return fmt.Errorf("size along axis %d must be positive, got %d", d, v)
		}
		n *= v
	}
	if len(img.Data) != n {
		return fmt.Errorf("image holds %d samples, size %v requires %d", len(img.Data), img.Size, n)
	}
	return nil
}

func toComplex(data []float64) []complex128 {
	out := make([]complex128, len(data))
	for i, v := range data {
		out[i] = complex(v, 0)
	}
	return out
}
