package harness

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// goldenDir is the fixture directory for scenarios that were not loaded
// from a file.
const goldenDir = "testdata/golden"

// GoldenPath returns the golden file of a scenario:
// golden/<name>.golden next to the scenario file, or
// testdata/golden/<scenario name>.golden when the scenario has no file.
func GoldenPath(scenario *Scenario) string {
	if scenario.Path == "" {
		return filepath.Join(goldenDir, scenario.Name+".golden")
	}
	dir := filepath.Dir(scenario.Path)
	base := filepath.Base(scenario.Path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGolden writes the result's normalized output as the golden file.
func UpdateGolden(scenario *Scenario, result *Result) error {
	path := GoldenPath(scenario)

	// Ensure golden directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, result.Output, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the result's output matches the golden file.
// found is false when the scenario has no golden file.
func CompareGolden(scenario *Scenario, result *Result) (match, found bool, err error) {
	want, err := os.ReadFile(GoldenPath(scenario))
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, true, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(want, result.Output), true, nil
}

// RunWithGolden executes a scenario, fails t on assertion errors, and
// compares the normalized output against the scenario's golden file.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}

	path := GoldenPath(scenario)
	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Dir(path)),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, strings.TrimSuffix(filepath.Base(path), ".golden"), result.Output)

	return result
}
