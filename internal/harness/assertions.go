package harness

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/typetrace/internal/record"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Output   []string // Normalized records for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Output) > 0 {
		fmt.Fprintf(&buf, "\nOutput:\n")
		for i, r := range e.Output {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, r)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns
// one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertSummary:
		return assertSummary(result, a)
	case AssertKindCount:
		return assertKindCount(result, a)
	case AssertOutputContains:
		return assertOutputContains(result, a)
	case AssertOutputOrder:
		return assertOutputOrder(result, a)
	case AssertRunError:
		return assertRunError(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertSummary compares the fields of the run summary the assertion names.
func assertSummary(result *Result, a Assertion) error {
	s := result.Summary
	var diffs []string
	if a.Items != nil && *a.Items != s.Items {
		diffs = append(diffs, fmt.Sprintf("items %d != %d", s.Items, *a.Items))
	}
	if a.Dropped != nil && *a.Dropped != s.Dropped {
		diffs = append(diffs, fmt.Sprintf("dropped %d != %d", s.Dropped, *a.Dropped))
	}
	if a.Truncated != nil && *a.Truncated != s.Truncated {
		diffs = append(diffs, fmt.Sprintf("truncated %t != %t", s.Truncated, *a.Truncated))
	}
	if len(diffs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertSummary,
		Expected: formatSummary(a.Items, a.Dropped, a.Truncated),
		Actual:   strings.Join(diffs, ", "),
		Output:   outputStrings(result),
	}
}

// assertKindCount checks the kind count in both the run summary and the index.
func assertKindCount(result *Result, a Assertion) error {
	fromRun := result.Summary.Kinds[a.Kind]
	fromIndex := result.IndexKinds[a.Kind]
	if fromRun == a.Count && fromIndex == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertKindCount,
		Expected: fmt.Sprintf("%d records of kind %s", a.Count, a.Kind),
		Actual:   fmt.Sprintf("%d in run summary, %d in index", fromRun, fromIndex),
		Output:   outputStrings(result),
	}
}

// assertOutputContains looks for a byte-identical normalized record.
func assertOutputContains(result *Result, a Assertion) error {
	want, err := record.Parse([]byte(a.Record))
	if err != nil {
		return fmt.Errorf("record is not a JSON object: %w", err)
	}
	out := outputStrings(result)
	if slices.Contains(out, want.String()) {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutputContains,
		Expected: want.String(),
		Actual:   "not found in output",
		Output:   out,
	}
}

// assertOutputOrder compares the output ids with the expected ids.
func assertOutputOrder(result *Result, a Assertion) error {
	want := make([]string, len(a.IDs))
	for i, id := range a.IDs {
		want[i] = strconv.FormatInt(id, 10)
	}

	got := make([]string, 0, len(result.Records))
	for _, r := range result.Records {
		id, _ := r.Get("id")
		got = append(got, string(id))
	}

	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutputOrder,
		Expected: "[" + strings.Join(want, ", ") + "]",
		Actual:   "[" + strings.Join(got, ", ") + "]",
		Output:   outputStrings(result),
	}
}

func assertRunError(result *Result, a Assertion) error {
	if result.RunErr != nil && strings.Contains(result.RunErr.Error(), a.Contains) {
		return nil
	}
	actual := "run succeeded"
	if result.RunErr != nil {
		actual = result.RunErr.Error()
	}
	return &AssertionError{
		Type:     AssertRunError,
		Expected: fmt.Sprintf("run error containing %q", a.Contains),
		Actual:   actual,
	}
}

func outputStrings(result *Result) []string {
	out := make([]string, len(result.Records))
	for i, r := range result.Records {
		out[i] = r.String()
	}
	return out
}

func formatSummary(items, dropped *int64, truncated *bool) string {
	var parts []string
	if items != nil {
		parts = append(parts, fmt.Sprintf("items=%d", *items))
	}
	if dropped != nil {
		parts = append(parts, fmt.Sprintf("dropped=%d", *dropped))
	}
	if truncated != nil {
		parts = append(parts, fmt.Sprintf("truncated=%t", *truncated))
	}
	return strings.Join(parts, " ")
}
