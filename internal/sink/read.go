package sink

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/roach88/typetrace/internal/record"
)

// errNotArray is returned by ReadAll when the input is not a JSON array.
var errNotArray = errors.New("output is not a JSON array")

// ReadAll decodes a complete output array written by Writer. Unlike array
// mode in the source package it is strict: any syntax fault is an error.
func ReadAll(r io.Reader) ([]record.Record, error) {
	dec := jsontext.NewDecoder(r, record.DecodeOptions...)
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	if tok.Kind() != '[' {
		return nil, fmt.Errorf("read output: %w", errNotArray)
	}

	out := []record.Record{}
	for dec.PeekKind() != ']' {
		val, err := dec.ReadValue()
		if err != nil {
			return nil, fmt.Errorf("read output element %d: %w", len(out)+1, err)
		}
		rec, err := record.Parse(val)
		if err != nil {
			return nil, fmt.Errorf("read output element %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
	if _, err := dec.ReadToken(); err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return out, nil
}
