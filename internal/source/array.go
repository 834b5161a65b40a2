package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/roach88/typetrace/internal/record"
)

// errNotArray is reported when array mode input does not start with "[".
var errNotArray = errors.New("input is not a JSON array")

// arraySource implements array mode on a streaming jsontext decoder.
type arraySource struct {
	dec     *jsontext.Decoder
	obs     Observer
	started bool
	done    bool
	index   int64
	stats   Stats
}

func newArraySource(r io.Reader, obs Observer) *arraySource {
	return &arraySource{
		dec: jsontext.NewDecoder(r, record.DecodeOptions...),
		obs: obs,
	}
}

func (s *arraySource) Next() (record.Record, error) {
	if s.done {
		return record.Record{}, io.EOF
	}

	if !s.started {
		s.started = true
		tok, err := s.dec.ReadToken()
		if errors.Is(err, io.EOF) {
			s.done = true
			return record.Record{}, io.EOF
		}
		if err != nil {
			return record.Record{}, s.fault(err)
		}
		if tok.Kind() != '[' {
			return record.Record{}, s.fault(errNotArray)
		}
	}

	for {
		if s.dec.PeekKind() == ']' {
			s.done = true
			if _, err := s.dec.ReadToken(); err != nil {
				return record.Record{}, s.fault(err)
			}
			return record.Record{}, io.EOF
		}

		val, err := s.dec.ReadValue()
		if err != nil {
			return record.Record{}, s.fault(err)
		}
		s.index++

		rec, perr := record.Parse(val)
		if perr != nil {
			s.stats.Dropped++
			s.obs.Dropped(s.index, string(val), perr)
			continue
		}
		return rec, nil
	}
}

// fault ends the stream. Parse faults become a clean EOF; anything else is
// a transport fault returned to the caller.
func (s *arraySource) fault(err error) error {
	s.done = true
	if IsParseFault(err) || errors.Is(err, errNotArray) {
		s.stats.Truncated = true
		s.obs.Truncated(s.dec.InputOffset(), err)
		return io.EOF
	}
	return fmt.Errorf("read input element %d: %w", s.index+1, err)
}

func (s *arraySource) Stats() Stats {
	return s.stats
}
