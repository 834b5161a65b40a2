package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/typetrace/internal/record"
	"github.com/roach88/typetrace/internal/source"
)

// Scenario defines a conformance scenario.
// A scenario feeds a small raw dump through the pipeline and asserts on
// the normalized output, the run summary and the kind index.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Mode is the input framing: "line" (default) or "array".
	Mode string `yaml:"mode,omitempty"`

	// Codec optionally compresses the input before the run: "gz", "br" or "zst".
	Codec string `yaml:"codec,omitempty"`

	// Input is the raw dump text, written to the input file as is.
	Input string `yaml:"input"`

	// Assertions validate the run.
	Assertions []Assertion `yaml:"assertions"`

	// Path is the file the scenario was loaded from, if any.
	Path string `yaml:"-"`
}

// Assertion validates one aspect of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "summary": Check items, dropped and truncated (each optional)
	// - "kind_count": Check the number of records of Kind
	// - "output_contains": Check Record appears in the output
	// - "output_order": Check the output ids are IDs, in order
	// - "run_error": Check the run failed with a message containing Contains
	Type string `yaml:"type"`

	// Items, Dropped and Truncated are the expected summary fields (used by summary).
	Items     *int64 `yaml:"items,omitempty"`
	Dropped   *int64 `yaml:"dropped,omitempty"`
	Truncated *bool  `yaml:"truncated,omitempty"`

	// Kind is the record kind (used by kind_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of records (used by kind_count).
	Count int64 `yaml:"count,omitempty"`

	// Record is the expected normalized record as JSON (used by output_contains).
	Record string `yaml:"record,omitempty"`

	// IDs are the expected output ids (used by output_order).
	IDs []int64 `yaml:"ids,omitempty"`

	// Contains is the expected error substring (used by run_error).
	Contains string `yaml:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertSummary        = "summary"
	AssertKindCount      = "kind_count"
	AssertOutputContains = "output_contains"
	AssertOutputOrder    = "output_order"
	AssertRunError       = "run_error"
)

// Codecs accepted in Scenario.Codec.
var validCodecs = []string{"", "gz", "br", "zst"}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.Path = path
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Mode == "" {
		scenario.Mode = source.LineMode.String()
	}

	// Validate required fields
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarioFiles finds all YAML scenario files under dir, sorted by path.
// A non-empty filter is a glob matched against the file name without extension.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		// Apply filter if specified
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	return files, err
}

// mode returns the source mode of the scenario.
func (s *Scenario) mode() source.Mode {
	if s.Mode == source.ArrayMode.String() {
		return source.ArrayMode
	}
	return source.LineMode
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Mode != source.LineMode.String() && s.Mode != source.ArrayMode.String() {
		return fmt.Errorf("mode must be line or array, got %q", s.Mode)
	}

	if !slices.Contains(validCodecs, s.Codec) {
		return fmt.Errorf("codec must be one of gz, br or zst, got %q", s.Codec)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	// Validate assertions
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSummary:
		if a.Items == nil && a.Dropped == nil && a.Truncated == nil {
			return fmt.Errorf("assertions[%d]: summary needs at least one of items, dropped or truncated", index)
		}
	case AssertKindCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for kind_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for kind_count", index)
		}
	case AssertOutputContains:
		if a.Record == "" {
			return fmt.Errorf("assertions[%d]: record is required for output_contains", index)
		}
		if _, err := record.Parse([]byte(a.Record)); err != nil {
			return fmt.Errorf("assertions[%d]: record is not a JSON object: %w", index, err)
		}
	case AssertOutputOrder:
		if a.IDs == nil {
			return fmt.Errorf("assertions[%d]: ids list is required for output_order", index)
		}
	case AssertRunError:
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for run_error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
