package testutil

import (
	"fmt"
	"sync"

	"github.com/roach88/typetrace/internal/report"
)

// Recorder is a report.Reporter (and source.Observer) that records every
// call as a line of text, so tests can assert on the exact sequence.
type Recorder struct {
	mu       sync.Mutex
	events   []string
	summary  report.Summary
	err      error
	finished int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *Recorder) Start() {
	r.add("start")
}

func (r *Recorder) Dropped(line int64, text string, err error) {
	r.add("dropped %d: %v", line, err)
}

func (r *Recorder) Truncated(offset int64, err error) {
	r.add("truncated: %v", err)
}

func (r *Recorder) Finish(s report.Summary, err error) {
	r.mu.Lock()
	r.summary = s
	r.err = err
	r.finished++
	r.mu.Unlock()

	if err != nil {
		r.add("finish %d items: %v", s.Items, err)
		return
	}
	r.add("finish %d items", s.Items)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Summary returns the summary passed to Finish.
func (r *Recorder) Summary() report.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// Err returns the error passed to Finish.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// FinishCount returns how many times Finish was called.
func (r *Recorder) FinishCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}
