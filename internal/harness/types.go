package harness

import (
	"github.com/roach88/typetrace/internal/record"
	"github.com/roach88/typetrace/internal/report"
	"github.com/roach88/typetrace/internal/store"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every assertion holds.
	Pass bool

	// Summary is the run summary returned by the pipeline.
	Summary report.Summary

	// RunErr is the run error, if any.
	RunErr error

	// Output is the normalized output array, decompressed.
	Output []byte

	// Records are the decoded output records, in order.
	Records []record.Record

	// Events are the reporter calls of the run, one line each.
	Events []string

	// IndexKinds are the per-kind counts read back from the kind index.
	IndexKinds map[string]int64

	// IndexRun is the run row read back from the kind index.
	IndexRun store.Run

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Events:     []string{},
		IndexKinds: make(map[string]int64),
		Errors:     []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
