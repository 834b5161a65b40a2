// Package report carries console output and diagnostics out of the pipeline.
//
// The pipeline never writes to a terminal directly. It talks to a Reporter,
// which lets tests capture every line deterministically and lets the CLI
// decide where console lines and structured diagnostics go.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Summary describes a finished (or failed) run.
type Summary struct {
	// Items is the number of records written to the sink.
	Items int64

	// Dropped is the number of input lines or elements skipped as unparseable.
	Dropped int64

	// Truncated is true when the input ended in the middle of a record.
	Truncated bool

	// Duration is the wall-clock time of the run.
	Duration time.Duration

	// Kinds counts written records per kind.
	Kinds map[string]int64
}

// KindNames returns the kinds of s sorted by descending count, then by name.
func (s Summary) KindNames() []string {
	names := make([]string, 0, len(s.Kinds))
	for k := range s.Kinds {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := s.Kinds[names[i]], s.Kinds[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	return names
}

// Reporter receives progress and diagnostics from a run.
type Reporter interface {
	// Start is called once before the first record is read.
	Start()

	// Dropped is called for every input line or element that is skipped.
	Dropped(line int64, text string, err error)

	// Truncated is called when the input ends inside a record.
	Truncated(offset int64, err error)

	// Finish is called exactly once with the final summary and the run error, if any.
	Finish(s Summary, err error)
}

// Console writes the user-facing lines to out and diagnostics to log.
//
// Console lines:
//
//	Processing...
//	Done | Error: <message>
//	Processed <N> items in <T> ms
type Console struct {
	out     io.Writer
	log     *slog.Logger
	verbose bool

	ok   *color.Color
	fail *color.Color
}

// NewConsole creates a console reporter. A nil logger discards diagnostics.
// With verbose set, Finish also logs per-kind counts.
func NewConsole(out io.Writer, log *slog.Logger, verbose bool) *Console {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Console{
		out:     out,
		log:     log,
		verbose: verbose,
		ok:      color.New(color.FgGreen),
		fail:    color.New(color.FgRed, color.Bold),
	}
}

func (c *Console) Start() {
	fmt.Fprintln(c.out, "Processing...")
}

func (c *Console) Dropped(line int64, text string, err error) {
	c.log.Warn("dropped line", "line", line, "text", preview(text), "error", err)
}

func (c *Console) Truncated(offset int64, err error) {
	c.log.Warn("input truncated, treating as end of data", "offset", offset, "error", err)
}

func (c *Console) Finish(s Summary, err error) {
	if err != nil {
		c.fail.Fprintf(c.out, "Error: %v\n", err)
	} else {
		c.ok.Fprintln(c.out, "Done")
	}
	fmt.Fprintf(c.out, "Processed %d items in %d ms\n", s.Items, s.Duration.Milliseconds())

	if c.verbose {
		for _, k := range s.KindNames() {
			c.log.Info("kind", "kind", k, "count", s.Kinds[k])
		}
		if s.Dropped > 0 {
			c.log.Info("dropped", "count", s.Dropped)
		}
	}
}

const previewLimit = 80

// preview shortens a dropped line for logging; type dumps can have very long lines.
func preview(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= previewLimit {
		return text
	}
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// Discard is a Reporter that ignores everything.
type Discard struct{}

func (Discard) Start()                       {}
func (Discard) Dropped(int64, string, error) {}
func (Discard) Truncated(int64, error)       {}
func (Discard) Finish(Summary, error)        {}
