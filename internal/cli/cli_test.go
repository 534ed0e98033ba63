package cli

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phasepeak/internal/logging"
	"phasepeak/pkg/config"
)

// writeShiftedPair writes a random texture and a circularly shifted copy so
// that moving(x, y) = fixed(x-sx, y-sy)
func writeShiftedPair(t *testing.T, dir string, size, sx, sy int) (string, string) {
	t.Helper()
	rng := rand.New(rand.NewSource(17))
	fixed := image.NewGray16(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fixed.SetGray16(x, y, color.Gray16{Y: uint16(rng.Intn(65536))})
		}
	}
	moving := image.NewGray16(fixed.Bounds())
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			srcX := ((x-sx)%size + size) % size
			srcY := ((y-sy)%size + size) % size
			moving.SetGray16(x, y, fixed.Gray16At(srcX, srcY))
		}
	}

	save := func(name string, img image.Image) string {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			t.Fatalf("Failed to encode %s: %v", name, err)
		}
		return path
	}
	return save("fixed.png", fixed), save("moving.png", moving)
}

// execute runs the root command with args and returns its standard output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Processing.NumCores = 2
	cmd := NewRootCmd(cfg, logging.Discard())

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// TestEstimateText prints the recovered shift first
func TestEstimateText(t *testing.T) {
	fixed, moving := writeShiftedPair(t, t.TempDir(), 32, 3, -5)

	out, err := execute(t, "estimate", fixed, moving, "--count", "2")
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) == 0 || len(lines) > 2 {
		t.Fatalf("Expected one or two candidates, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], "1: offset (3.0000, -5.0000)") {
		t.Errorf("Unexpected first candidate: %q", lines[0])
	}
}

// TestEstimateJSON reports offsets in physical units
func TestEstimateJSON(t *testing.T) {
	fixed, moving := writeShiftedPair(t, t.TempDir(), 32, -4, 2)

	out, err := execute(t, "estimate", fixed, moving,
		"--format", "json",
		"--spacing", "0.5,2",
		"--fixed-origin", "1,1",
		"--moving-origin", "1,1",
		"--interpolation", "cosine")
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}

	var rep report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, out)
	}
	if len(rep.Candidates) == 0 {
		t.Fatalf("Expected at least one candidate")
	}
	best := rep.Candidates[0].Offset
	if math.Abs(best[0]-(-2)) > 1e-6 || math.Abs(best[1]-4) > 1e-6 {
		t.Errorf("Expected offset (-2, 4), got %v", best)
	}
	if rep.Fixed != fixed || rep.Moving != moving {
		t.Errorf("Unexpected paths in report: %s, %s", rep.Fixed, rep.Moving)
	}
}

// TestEstimateConfigFile applies the file and lets flags override it
func TestEstimateConfigFile(t *testing.T) {
	dir := t.TempDir()
	fixed, moving := writeShiftedPair(t, dir, 32, 1, 1)

	path := filepath.Join(dir, "phasepeak.yaml")
	content := "estimator:\n  offsetCount: 1\n  mergePeaks: 0\noutput:\n  format: json\nlogging:\n  level: error\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	out, err := execute(t, "estimate", fixed, moving, "--config", path)
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	var rep report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("Expected JSON from the config file format: %v", err)
	}
	if len(rep.Candidates) != 1 {
		t.Errorf("Expected a single candidate from offsetCount, got %d", len(rep.Candidates))
	}

	out, err = execute(t, "estimate", fixed, moving, "--config", path, "--format", "text")
	if err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if !strings.HasPrefix(out, "1: offset (1.0000, 1.0000)") {
		t.Errorf("Expected the text format flag to win, got %q", out)
	}
}

// TestEstimateAutomaticCores accepts zero workers as every CPU
func TestEstimateAutomaticCores(t *testing.T) {
	fixed, moving := writeShiftedPair(t, t.TempDir(), 16, 2, 3)

	out, err := execute(t, "estimate", fixed, moving, "--cores", "0", "--count", "1")
	if err != nil {
		t.Fatalf("estimate with --cores 0 failed: %v", err)
	}
	if !strings.HasPrefix(out, "1: offset (2.0000, 3.0000)") {
		t.Errorf("Unexpected output %q", out)
	}
}

// TestEstimateIntermediary writes the debug surfaces on request
func TestEstimateIntermediary(t *testing.T) {
	dir := t.TempDir()
	fixed, moving := writeShiftedPair(t, dir, 16, 2, 0)
	dumps := filepath.Join(dir, "dumps")

	if _, err := execute(t, "estimate", fixed, moving, "--save-intermediary", "--intermediary-dir", dumps); err != nil {
		t.Fatalf("estimate failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dumps, "01_adjusted.png")); err != nil {
		t.Errorf("Expected an adjusted surface dump: %v", err)
	}
}

// TestEstimateErrors covers bad arguments and inputs
func TestEstimateErrors(t *testing.T) {
	dir := t.TempDir()
	fixed, moving := writeShiftedPair(t, dir, 16, 0, 0)

	cases := map[string][]string{
		"one argument":  {"estimate", fixed},
		"missing image": {"estimate", fixed, filepath.Join(dir, "missing.png")},
		"interpolation": {"estimate", fixed, moving, "--interpolation", "cubic"},
		"suppression":   {"estimate", fixed, moving, "--zero-suppression", "101"},
		"config":        {"estimate", fixed, moving, "--config", filepath.Join(dir, "missing.yaml")},
		"spacing":       {"estimate", fixed, moving, "--spacing", "1,1,1"},
		"cores":         {"estimate", fixed, moving, "--cores", "-1"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := execute(t, args...); err == nil {
				t.Errorf("Expected an error")
			}
		})
	}
}

// TestConfigInit writes a loadable default file and refuses to overwrite it
func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "phasepeak.yaml")

	out, err := execute(t, "config", "init", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("Expected the path in the output, got %q", out)
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Errorf("Written config does not load: %v", err)
	}

	if _, err := execute(t, "config", "init", path); err == nil {
		t.Errorf("Expected an error when the file exists")
	}
	if _, err := execute(t, "config", "init", path, "--force"); err != nil {
		t.Errorf("Expected --force to overwrite: %v", err)
	}
}

// TestVersion prints the version
func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "phasepeak v"+Version) {
		t.Errorf("Unexpected version output %q", out)
	}
}
