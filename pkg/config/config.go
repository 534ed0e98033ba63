// Package config provides configuration loading and management for phasepeak.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for region-parallel stages.
		// Zero uses every available CPU.
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Estimator parameters
	Estimator struct {
		// OffsetCount is how many candidate offsets to report
		OffsetCount int `yaml:"offsetCount"`

		// Interpolation selects the sub-pixel peak refinement: none, parabolic or cosine
		Interpolation string `yaml:"interpolation"`

		// MergePeaks is the maximum Chebyshev distance, in pixels, at which
		// two maxima are treated as one blurred peak. Zero disables merging.
		MergePeaks int `yaml:"mergePeaks"`

		// ZeroSuppression is how strongly the trivial zero shift is damped (0-100)
		ZeroSuppression float64 `yaml:"zeroSuppression"`

		// PixelDistanceTolerance is the expected maximum translation in pixels.
		// Zero selects a scale derived from the surface size.
		PixelDistanceTolerance int `yaml:"pixelDistanceTolerance"`

		// ConfidenceScale multiplies reported confidences
		ConfidenceScale float64 `yaml:"confidenceScale"`
	} `yaml:"estimator"`

	// Output parameters
	Output struct {
		// SaveIntermediaryResults determines whether to dump adjusted surfaces
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// IntermediaryDir is where the dumps are written
		IntermediaryDir string `yaml:"intermediaryDir"`

		// Format of the estimate report: text or json
		Format string `yaml:"format"`
	} `yaml:"output"`

	// Logging parameters
	Logging struct {
		// Level is one of debug, info, warn, error
		Level string `yaml:"level"`

		// Format is text or json
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumCores = runtime.NumCPU()

	cfg.Estimator.OffsetCount = 4
	cfg.Estimator.Interpolation = "parabolic"
	cfg.Estimator.MergePeaks = 1
	cfg.Estimator.ZeroSuppression = 5
	cfg.Estimator.PixelDistanceTolerance = 0
	cfg.Estimator.ConfidenceScale = 1

	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.IntermediaryDir = "intermediary_results"
	cfg.Output.Format = "text"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	return cfg
}

// Validate reports the first setting that is out of range
func (c *Config) Validate() error {
	if c.Processing.NumCores < 0 {
		return fmt.Errorf("processing.numCores must not be negative, got %d", c.Processing.NumCores)
	}
	if c.Estimator.OffsetCount < 1 {
		return fmt.Errorf("estimator.offsetCount must be at least 1, got %d", c.Estimator.OffsetCount)
	}
	switch strings.ToLower(c.Estimator.Interpolation) {
	case "none", "parabolic", "cosine":
	default:
		return fmt.Errorf("estimator.interpolation must be none, parabolic or cosine, got %q", c.Estimator.Interpolation)
	}
	if c.Estimator.MergePeaks < 0 {
		return fmt.Errorf("estimator.mergePeaks must not be negative, got %d", c.Estimator.MergePeaks)
	}
	if c.Estimator.ZeroSuppression < 0 || c.Estimator.ZeroSuppression > 100 {
		return fmt.Errorf("estimator.zeroSuppression must be within [0, 100], got %g", c.Estimator.ZeroSuppression)
	}
	if s := c.Estimator.ConfidenceScale; !(s > 0) || math.IsInf(s, 1) {
		return fmt.Errorf("estimator.confidenceScale must be positive and finite, got %g", s)
	}
	if c.Estimator.PixelDistanceTolerance < 0 {
		return fmt.Errorf("estimator.pixelDistanceTolerance must not be negative, got %d", c.Estimator.PixelDistanceTolerance)
	}
	switch strings.ToLower(c.Output.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json, got %q", c.Output.Format)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
