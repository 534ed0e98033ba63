package estimation

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"phasepeak/internal/models"
	"phasepeak/pkg/visualization"
)

// saveIntermediaryResult dumps an adjusted surface for debugging. It is a
// no-op unless SaveIntermediaryResults is set; failures are only logged.
func (e *Estimator) saveIntermediaryResult(stage string, s *models.Surface) {
	if !e.params.SaveIntermediaryResults {
		return
	}
	if err := writeSurface(e.params.IntermediaryDir, stage, s); err != nil {
		e.log.Warn("failed to save intermediary surface", "stage", stage, "error", err)
		return
	}
	e.log.Debug("saved intermediary surface", "stage", stage, "dir", e.params.IntermediaryDir)
}

// writeSurface stores 2D surfaces as PNG, 3D surfaces as a sequence of z
// slices and anything else as raw little-endian float64 samples.
func writeSurface(dir, stage string, s *models.Surface) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create intermediary directory: %w", err)
	}

	switch s.Dims() {
	case 2:
		viewer, err := visualization.NewViewer(s)
		if err != nil {
			return err
		}
		img, err := viewer.Render()
		if err != nil {
			return err
		}
		return viewer.SaveSlice(img, filepath.Join(dir, stage+".png"))

	case 3:
		viewer, err := visualization.NewViewer(s)
		if err != nil {
			return err
		}
		return viewer.SaveSliceSequence(filepath.Join(dir, stage))

	default:
		file, err := os.Create(filepath.Join(dir, stage+".bin"))
		if err != nil {
			return fmt.Errorf("failed to create binary file: %w", err)
		}
		defer file.Close()

		w := bufio.NewWriter(file)
		if err := binary.Write(w, binary.LittleEndian, s.Data); err != nil {
			return fmt.Errorf("failed to write binary data: %w", err)
		}
		return w.Flush()
	}
}
