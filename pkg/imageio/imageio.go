// Package imageio loads images from disk as scalar grids.
package imageio

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"phasepeak/internal/models"
)

// Load reads a PNG, JPEG, GIF, TIFF or BMP file and converts it to a 2D grid
// of luminance values in [0, 1]. Missing geometry components default to
// spacing 1 and origin 0.
func Load(path string, geom models.Geometry) (*models.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	out, err := FromImage(img, geom)
	if err != nil {
		return nil, fmt.Errorf("%s image %s: %w", format, path, err)
	}
	return out, nil
}

// FromImage converts a decoded image to a 2D grid
func FromImage(img image.Image, geom models.Geometry) (*models.Image, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image is empty")
	}

	g, err := geometry2D(geom)
	if err != nil {
		return nil, err
	}

	out := &models.Image{
		Data:     imageToFloat(img),
		Size:     []int{width, height},
		Geometry: g,
	}
	return out, nil
}

func geometry2D(geom models.Geometry) (models.Geometry, error) {
	g := models.Geometry{
		Origin:  []float64{0, 0},
		Spacing: []float64{1, 1},
	}
	switch len(geom.Origin) {
	case 0:
	case 2:
		copy(g.Origin, geom.Origin)
	default:
		return g, fmt.Errorf("origin must have 2 components, got %d", len(geom.Origin))
	}
	switch len(geom.Spacing) {
	case 0:
	case 2:
		copy(g.Spacing, geom.Spacing)
	default:
		return g, fmt.Errorf("spacing must have 2 components, got %d", len(geom.Spacing))
	}
	for d, sp := range g.Spacing {
		if !(sp > 0) {
			return g, fmt.Errorf("spacing along axis %d must be positive, got %g", d, sp)
		}
	}
	return g, nil
}

// imageToFloat converts an image to luminance in the 0-1 range
func imageToFloat(img image.Image) []float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Rec. 601 luma on 16-bit channels
			lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			result[y*width+x] = lum / 65535.0
		}
	}

	return result
}
