package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"phasepeak/internal/models"
)

// Viewer renders correlation surfaces as grayscale images. Values are
// stretched so the smallest sample maps to black and the largest to white.
type Viewer struct {
	surface *models.Surface

	// intensity range used for normalization
	low  float64
	high float64
}

// NewViewer creates a viewer for a 2D or 3D surface
func NewViewer(surface *models.Surface) (*Viewer, error) {
	if err := surface.Validate(); err != nil {
		return nil, err
	}
	if d := surface.Dims(); d != 2 && d != 3 {
		return nil, fmt.Errorf("only 2D and 3D surfaces can be rendered, got %dD", d)
	}

	v := &Viewer{surface: surface}
	finite := make([]float64, 0, len(surface.Data))
	for _, x := range surface.Data {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			finite = append(finite, x)
		}
	}
	if len(finite) > 0 {
		v.low = floats.Min(finite)
		v.high = floats.Max(finite)
	}
	return v, nil
}

// gray maps a sample to the 16 bit range
func (v *Viewer) gray(x float64) color.Gray16 {
	if v.high <= v.low || math.IsNaN(x) {
		return color.Gray16{}
	}
	t := (x - v.low) / (v.high - v.low)
	return color.Gray16{Y: uint16(math.Max(0, math.Min(65535, t*65535)))}
}

// Render returns the whole surface as an image. Only valid for 2D surfaces.
func (v *Viewer) Render() (image.Image, error) {
	if v.surface.Dims() != 2 {
		return nil, fmt.Errorf("render needs a 2D surface, got %dD", v.surface.Dims())
	}
	width, height := v.surface.Size[0], v.surface.Size[1]
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray16(x, y, v.gray(v.surface.Data[y*width+x]))
		}
	}
	return img, nil
}

// ExtractSlice extracts the XY plane at depth position from a 3D surface
func (v *Viewer) ExtractSlice(position int) (image.Image, error) {
	if v.surface.Dims() != 3 {
		return nil, fmt.Errorf("slices need a 3D surface, got %dD", v.surface.Dims())
	}
	width, height, depth := v.surface.Size[0], v.surface.Size[1], v.surface.Size[2]
	if position < 0 || position >= depth {
		return nil, fmt.Errorf("position %d outside depth %d", position, depth)
	}

	plane := v.surface.Data[position*width*height : (position+1)*width*height]
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray16(x, y, v.gray(plane[y*width+x]))
		}
	}
	return img, nil
}

// SaveSlice saves an image as PNG
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}

// SaveSliceSequence extracts and saves every XY slice of a 3D surface
func (v *Viewer) SaveSliceSequence(outputDir string) error {
	if v.surface.Dims() != 3 {
		return fmt.Errorf("slices need a 3D surface, got %dD", v.surface.Dims())
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for pos := 0; pos < v.surface.Size[2]; pos++ {
		img, err := v.ExtractSlice(pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_z_%03d.png", pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
