// Package source reads raw tracer records from a (possibly compressed,
// possibly truncated) dump.
//
// Two framings are supported:
//
//   - Line mode: one JSON object per line. The tracer writes its array one
//     element per line, so a leading "[" or trailing "]" and a trailing ","
//     are stripped from each line. The first unparseable line switches the
//     source into drop mode for the rest of the input.
//
//   - Array mode: the whole input is one JSON array, streamed element by
//     element. A syntax fault or unexpected end of input ends the stream
//     cleanly, which covers dumps cut short by a crash.
//
// Parse faults are reported to an Observer and never returned. Only
// transport faults (read or decompression failures) surface as errors.
package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/roach88/typetrace/internal/codec"
	"github.com/roach88/typetrace/internal/record"
)

// Mode selects the input framing.
type Mode int

const (
	// LineMode reads one JSON object per line.
	LineMode Mode = iota
	// ArrayMode streams a single top-level JSON array.
	ArrayMode
)

func (m Mode) String() string {
	switch m {
	case LineMode:
		return "line"
	case ArrayMode:
		return "array"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ErrDropMode is reported for lines skipped after an earlier parse fault.
var ErrDropMode = errors.New("dropped after earlier parse error")

// Observer receives parse-fault diagnostics.
type Observer interface {
	Dropped(line int64, text string, err error)
	Truncated(offset int64, err error)
}

// Source yields raw records one at a time.
type Source interface {
	// Next returns the next record, or io.EOF when the input is exhausted.
	// Any other error is a transport fault.
	Next() (record.Record, error)

	// Stats returns the parse-fault counters so far.
	Stats() Stats
}

// Stats counts recoverable faults seen by a source.
type Stats struct {
	Dropped   int64
	Truncated bool
}

// New creates a source with the given framing over r.
func New(mode Mode, r io.Reader, obs Observer) Source {
	if obs == nil {
		obs = nopObserver{}
	}
	if mode == ArrayMode {
		return newArraySource(r, obs)
	}
	return newLineSource(r, obs)
}

// File is a Source reading from a file through its codec.
type File struct {
	Source
	rc io.ReadCloser
}

// Open opens path, picks the decompressor by extension and wraps it in a
// source with the given framing. The caller must Close the result.
func Open(path string, mode Mode, obs Observer) (*File, error) {
	rc, err := codec.Open(path)
	if err != nil {
		return nil, err
	}
	return &File{Source: New(mode, rc, obs), rc: rc}, nil
}

// Close releases the decompressor and the file.
func (f *File) Close() error {
	return f.rc.Close()
}

// IsParseFault reports whether err is a JSON syntax fault or premature end
// of input, as opposed to a transport fault.
func IsParseFault(err error) bool {
	var se *jsontext.SyntacticError
	return errors.As(err, &se) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, record.ErrNotObject)
}

type nopObserver struct{}

func (nopObserver) Dropped(int64, string, error) {}
func (nopObserver) Truncated(int64, error)       {}
