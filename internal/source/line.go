package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/typetrace/internal/record"
)

// lineSource implements line mode.
type lineSource struct {
	r        *bufio.Reader
	obs      Observer
	line     int64
	dropping bool
	stats    Stats
}

func newLineSource(r io.Reader, obs Observer) *lineSource {
	return &lineSource{r: bufio.NewReaderSize(r, 1<<16), obs: obs}
}

func (s *lineSource) Next() (record.Record, error) {
	for {
		raw, err := s.r.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return record.Record{}, fmt.Errorf("read input line %d: %w", s.line+1, err)
		}
		if len(raw) == 0 && err != nil {
			return record.Record{}, io.EOF
		}
		s.line++

		text := trimLine(raw)
		if len(text) == 0 {
			continue
		}

		if s.dropping {
			s.drop(text, ErrDropMode)
			continue
		}

		rec, perr := record.Parse(text)
		if perr != nil {
			s.dropping = true
			s.drop(text, perr)
			continue
		}
		return rec, nil
	}
}

func (s *lineSource) drop(text []byte, err error) {
	s.stats.Dropped++
	s.obs.Dropped(s.line, string(text), err)
}

func (s *lineSource) Stats() Stats {
	return s.stats
}

// trimLine strips the line terminator, a trailing element separator and
// the array brackets the tracer puts on the first and last element.
func trimLine(line []byte) []byte {
	line = bytes.TrimSpace(line)
	line = bytes.TrimSuffix(line, []byte(","))
	line = bytes.TrimPrefix(line, []byte("["))
	line = bytes.TrimSuffix(line, []byte("]"))
	return bytes.TrimSpace(line)
}
