// Package sink writes normalized records as one JSON array.
//
// Records are appended as they complete, so a run that fails half way still
// leaves every finished record on disk. Close always terminates the array.
package sink

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/typetrace/internal/codec"
	"github.com/roach88/typetrace/internal/record"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("sink is closed")

// Writer appends records to a JSON array.
type Writer struct {
	bw      *bufio.Writer
	flusher interface{ Flush() error }
	closer  io.Closer
	buf     []byte
	count   int64
	opened  bool
	closed  bool
}

// New creates a Writer over w. If w is also an io.Closer it is closed by
// Close; if it has a Flush method, Flush calls it.
func New(w io.Writer) *Writer {
	s := &Writer{bw: bufio.NewWriterSize(w, 1<<16)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	if f, ok := w.(interface{ Flush() error }); ok {
		s.flusher = f
	}
	return s
}

// Create creates path and returns a Writer through the codec chosen by its extension.
func Create(path string) (*Writer, error) {
	wc, err := codec.Create(path)
	if err != nil {
		return nil, err
	}
	return New(wc), nil
}

// Write appends one record.
func (s *Writer) Write(r record.Record) error {
	if s.closed {
		return ErrClosed
	}

	s.buf = s.buf[:0]
	if !s.opened {
		s.buf = append(s.buf, '[')
		s.opened = true
	} else {
		s.buf = append(s.buf, ',')
	}

	var err error
	s.buf, err = r.AppendJSON(s.buf)
	if err != nil {
		return fmt.Errorf("encode record %d: %w", s.count+1, err)
	}

	if _, err := s.bw.Write(s.buf); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	s.count++
	return nil
}

// Count returns the number of records written.
func (s *Writer) Count() int64 {
	return s.count
}

// Flush pushes every record written so far to the underlying writer and,
// through its Flush method, past any compressor to the file.
func (s *Writer) Flush() error {
	if s.closed {
		return ErrClosed
	}
	if err := s.bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if s.flusher != nil {
		if err := s.flusher.Flush(); err != nil {
			return fmt.Errorf("flush output: %w", err)
		}
	}
	return nil
}

// Close writes the closing bracket (or "[]" when nothing was written),
// flushes, and closes the underlying writer. Close is idempotent.
func (s *Writer) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	tail := "]"
	if !s.opened {
		tail = "[]"
	}

	var errs []error
	if _, err := s.bw.WriteString(tail); err != nil {
		errs = append(errs, fmt.Errorf("write output: %w", err))
	}
	if err := s.bw.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flush output: %w", err))
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output: %w", err))
		}
	}
	return errors.Join(errs...)
}
