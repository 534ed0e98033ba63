package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"phasepeak/internal/logging"
	"phasepeak/internal/models"
	"phasepeak/pkg/config"
	"phasepeak/pkg/correlation"
	"phasepeak/pkg/estimation"
	"phasepeak/pkg/imageio"
)

// Version is reported by the version command
var Version = "0.1.0-dev"

// Root holds what every command shares
type Root struct {
	cfg *config.Config
	log *slog.Logger
}

// NewRoot creates the shared command state. A nil config selects the defaults
// and a nil logger drops everything.
func NewRoot(cfg *config.Config, log *slog.Logger) *Root {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Root{cfg: cfg, log: log}
}

// estimateRequest is one estimate invocation after flags and config are merged
type estimateRequest struct {
	fixedPath    string
	movingPath   string
	fixedOrigin  []float64
	movingOrigin []float64
	spacing      []float64
}

// report is the machine readable estimate output
type report struct {
	Fixed      string      `json:"fixed"`
	Moving     string      `json:"moving"`
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Offset     []float64 `json:"offset"`
	Confidence float64   `json:"confidence"`
}

// paramsFromConfig converts the estimator section into estimation.Params
func paramsFromConfig(cfg *config.Config) (estimation.Params, error) {
	method, err := estimation.ParseInterpolationMethod(cfg.Estimator.Interpolation)
	if err != nil {
		return estimation.Params{}, err
	}
	return estimation.Params{
		Interpolation:           method,
		MergePeaks:              cfg.Estimator.MergePeaks,
		ZeroSuppression:         cfg.Estimator.ZeroSuppression,
		PixelDistanceTolerance:  cfg.Estimator.PixelDistanceTolerance,
		ConfidenceScale:         cfg.Estimator.ConfidenceScale,
		NumCores:                cfg.Processing.NumCores,
		SaveIntermediaryResults: cfg.Output.SaveIntermediaryResults,
		IntermediaryDir:         cfg.Output.IntermediaryDir,
	}, nil
}

// runEstimate loads both images, correlates them and writes the ranked offsets to out
func runEstimate(cfg *config.Config, log *slog.Logger, req estimateRequest, out io.Writer) error {
	params, err := paramsFromConfig(cfg)
	if err != nil {
		return err
	}

	fixed, err := imageio.Load(req.fixedPath, models.Geometry{Origin: req.fixedOrigin, Spacing: req.spacing})
	if err != nil {
		return fmt.Errorf("failed to load fixed image: %w", err)
	}
	moving, err := imageio.Load(req.movingPath, models.Geometry{Origin: req.movingOrigin, Spacing: req.spacing})
	if err != nil {
		return fmt.Errorf("failed to load moving image: %w", err)
	}
	log.Info("loaded images",
		"fixed", req.fixedPath,
		"moving", req.movingPath,
		"size", fixed.Size)

	surface, err := correlation.PhaseCorrelation(fixed, moving)
	if err != nil {
		return fmt.Errorf("phase correlation failed: %w", err)
	}

	est := estimation.NewEstimator(params, nil, log)
	result, err := est.Estimate(surface, fixed.Geometry, moving.Geometry, cfg.Estimator.OffsetCount)
	if err != nil {
		return fmt.Errorf("estimation failed: %w", err)
	}
	log.Info("estimated offsets",
		"candidates", len(result.Offsets),
		"interpolation", params.Interpolation.String())

	rep := report{
		Fixed:      req.fixedPath,
		Moving:     req.movingPath,
		Candidates: make([]candidate, len(result.Offsets)),
	}
	for i := range result.Offsets {
		rep.Candidates[i] = candidate{Offset: result.Offsets[i], Confidence: result.Confidences[i]}
	}
	return writeReport(out, cfg.Output.Format, rep)
}

func writeReport(out io.Writer, format string, rep report) error {
	if strings.ToLower(format) == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	if len(rep.Candidates) == 0 {
		_, err := fmt.Fprintln(out, "no offset candidates found")
		return err
	}
	for i, c := range rep.Candidates {
		parts := make([]string, len(c.Offset))
		for d, v := range c.Offset {
			parts[d] = fmt.Sprintf("%.4f", v)
		}
		if _, err := fmt.Fprintf(out, "%d: offset (%s) confidence %.6g\n", i+1, strings.Join(parts, ", "), c.Confidence); err != nil {
			return err
		}
	}
	return nil
}
