package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/typetrace/internal/codec"
	"github.com/roach88/typetrace/internal/pipeline"
	"github.com/roach88/typetrace/internal/sink"
	"github.com/roach88/typetrace/internal/store"
	"github.com/roach88/typetrace/internal/testutil"
)

// clockStep is the duration every run of the harness measures.
const clockStep = time.Millisecond

// scenarioEpoch is the started_at of every indexed scenario run.
var scenarioEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness is the scenario execution engine.
// It runs scenarios in a scratch directory with a deterministic clock and run id.
type Harness struct {
	dir    string
	store  *store.Store
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh scratch directory and index for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Write the scenario input (compressed if requested)
// 2. Run the pipeline with a recording reporter and a kind index
// 3. Read back the output array and the index counts
// 4. Evaluate assertions
//
// An error is returned only when the harness itself fails; a failing run
// is a result, checked by run_error assertions.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "typetrace-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	defer st.Close()

	h := &Harness{
		dir:    dir,
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs
	}

	result := NewResult()
	if err := h.execute(ctx, scenario, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	// A failed run nobody expected is a failure even without assertions on it.
	if result.RunErr != nil && !expectsRunError(scenario.Assertions) {
		result.AddError(fmt.Sprintf("run failed: %v", result.RunErr))
	}

	return result, nil
}

func (h *Harness) execute(ctx context.Context, scenario *Scenario, result *Result) error {
	ext := ""
	if scenario.Codec != "" {
		ext = "." + scenario.Codec
	}
	input := filepath.Join(h.dir, "input.json"+ext)
	output := filepath.Join(h.dir, "output.json")

	if err := writeInput(input, scenario.Input); err != nil {
		return fmt.Errorf("failed to write input: %w", err)
	}

	rec := testutil.NewRecorder()
	idx := h.store.NewRunIndex(testutil.NewFixedRunIDGenerator(scenario.Name))
	idx.SetClock(func() time.Time { return scenarioEpoch })

	sum, runErr := pipeline.Run(ctx, pipeline.Options{
		Input:    input,
		Output:   output,
		Mode:     scenario.mode(),
		Reporter: rec,
		Index:    idx,
		Now:      testutil.NewStepClock(clockStep).Now,
	})
	result.Summary = sum
	result.RunErr = runErr
	result.Events = rec.Events()
	h.logger.Info("scenario run finished", "scenario", scenario.Name, "items", sum.Items, "error", runErr)

	data, err := os.ReadFile(output)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read output: %w", err)
	}
	if err == nil {
		result.Output = data
		records, err := sink.ReadAll(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("output is not a complete array: %w", err)
		}
		result.Records = records
	}

	counts, err := h.store.KindCounts(ctx, idx.RunID())
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}
	for _, kc := range counts {
		result.IndexKinds[kc.Kind] = kc.Count
	}

	result.IndexRun, err = h.store.ReadRun(ctx, idx.RunID())
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}
	return nil
}

func writeInput(path, text string) error {
	w, err := codec.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, text); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func expectsRunError(assertions []Assertion) bool {
	for _, a := range assertions {
		if a.Type == AssertRunError {
			return true
		}
	}
	return false
}
