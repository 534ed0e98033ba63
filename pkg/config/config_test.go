package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDefaultConfig checks the documented defaults
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Processing.NumCores < 1 {
		t.Errorf("Expected at least one core, got %d", cfg.Processing.NumCores)
	}
	if cfg.Estimator.Interpolation != "parabolic" {
		t.Errorf("Expected parabolic interpolation, got %q", cfg.Estimator.Interpolation)
	}
	if cfg.Estimator.MergePeaks != 1 {
		t.Errorf("Expected mergePeaks=1, got %d", cfg.Estimator.MergePeaks)
	}
	if cfg.Estimator.ZeroSuppression != 5 {
		t.Errorf("Expected zeroSuppression=5, got %f", cfg.Estimator.ZeroSuppression)
	}
	if cfg.Estimator.PixelDistanceTolerance != 0 {
		t.Errorf("Expected automatic tolerance, got %d", cfg.Estimator.PixelDistanceTolerance)
	}
	if cfg.Output.SaveIntermediaryResults {
		t.Errorf("Intermediary results must be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

// TestLoadConfigMissingFile returns defaults for a path that does not exist
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Estimator.OffsetCount != DefaultConfig().Estimator.OffsetCount {
		t.Errorf("Expected default offset count, got %d", cfg.Estimator.OffsetCount)
	}
}

// TestLoadConfigOverrides checks that a partial file only changes what it names
func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phasepeak.yaml")
	content := `
estimator:
  interpolation: cosine
  mergePeaks: 0
  zeroSuppression: 20
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Estimator.Interpolation != "cosine" {
		t.Errorf("Expected cosine, got %q", cfg.Estimator.Interpolation)
	}
	if cfg.Estimator.MergePeaks != 0 {
		t.Errorf("Expected merging disabled, got %d", cfg.Estimator.MergePeaks)
	}
	if cfg.Estimator.ZeroSuppression != 20 {
		t.Errorf("Expected zeroSuppression=20, got %f", cfg.Estimator.ZeroSuppression)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug logging, got %q", cfg.Logging.Level)
	}
	// untouched sections keep their defaults
	if cfg.Estimator.OffsetCount != 4 {
		t.Errorf("Expected default offset count 4, got %d", cfg.Estimator.OffsetCount)
	}
}

// TestLoadConfigRejectsInvalid covers parse and range errors
func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"syntax":        "estimator: [",
		"interpolation": "estimator:\n  interpolation: cubic\n",
		"suppression":   "estimator:\n  zeroSuppression: 150\n",
		"merge":         "estimator:\n  mergePeaks: -1\n",
		"count":         "estimator:\n  offsetCount: 0\n",
		"format":        "output:\n  format: xml\n",
		"cores":         "processing:\n  numCores: -1\n",
		"negativeScale": "estimator:\n  confidenceScale: -1\n",
		"zeroScale":     "estimator:\n  confidenceScale: 0\n",
		"nanScale":      "estimator:\n  confidenceScale: .nan\n",
		"infScale":      "estimator:\n  confidenceScale: .inf\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("Expected an error for %s", name)
			}
		})
	}
}

// TestValidateAutomaticCores accepts zero as every available CPU
func TestValidateAutomaticCores(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Processing.NumCores = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected numCores=0 to be valid: %v", err)
	}
}

// TestCreateDefaultConfigFile writes a file that loads back to the defaults
func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}
	if !strings.Contains(string(data), "zeroSuppression: 5") {
		t.Errorf("Expected zeroSuppression in output, got:\n%s", data)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if cfg.Estimator.Interpolation != "parabolic" {
		t.Errorf("Expected parabolic after reload, got %q", cfg.Estimator.Interpolation)
	}
}
