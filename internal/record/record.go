package record

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

// ErrNotObject is returned by Parse when the input is valid JSON but not an object.
var ErrNotObject = errors.New("record is not a JSON object")

// Member is a single name/value pair of a Record.
type Member struct {
	Name  string
	Value jsontext.Value
}

// Record is an ordered JSON object.
//
// A Record is immutable: every method that changes members returns a new
// Record and leaves the receiver untouched. The zero value is an empty object.
type Record struct {
	members []Member
}

// New creates a Record from members in the given order.
// Later duplicates replace earlier ones in place; nil values are skipped.
func New(members ...Member) Record {
	var r Record
	for _, m := range members {
		r = r.With(m.Name, m.Value)
	}
	return r
}

// Parse decodes a single JSON object, keeping member order.
// Values are compacted so output does not depend on input whitespace.
func Parse(data []byte) (Record, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data), DecodeOptions...)

	tok, err := dec.ReadToken()
	if err != nil {
		return Record{}, err
	}
	if tok.Kind() != '{' {
		return Record{}, ErrNotObject
	}

	var members []Member
	for dec.PeekKind() != '}' {
		name, err := dec.ReadToken()
		if err != nil {
			return Record{}, err
		}
		val, err := dec.ReadValue()
		if err != nil {
			return Record{}, err
		}
		// ReadValue's buffer is only valid until the next read.
		v := val.Clone()
		if err := v.Compact(); err != nil {
			return Record{}, err
		}
		members = setMember(members, name.String(), v)
	}
	if _, err := dec.ReadToken(); err != nil {
		return Record{}, err
	}

	// Anything after the closing brace is a parse fault.
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = fmt.Errorf("unexpected data after object at offset %d", dec.InputOffset())
		}
		return Record{}, err
	}

	return Record{members: members}, nil
}

// DecodeOptions are the jsontext options used for tracer input. The tracer
// does not guarantee unique member names or valid UTF-8 in symbol names.
var DecodeOptions = []jsontext.Options{
	jsontext.AllowDuplicateNames(true),
	jsontext.AllowInvalidUTF8(true),
}

// setMember replaces an existing member in place (last value wins) or appends.
func setMember(members []Member, name string, v jsontext.Value) []Member {
	for i := range members {
		if members[i].Name == name {
			members[i].Value = v
			return members
		}
	}
	return append(members, Member{Name: name, Value: v})
}

func (r Record) index(name string) int {
	for i, m := range r.members {
		if m.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the raw value of a member.
func (r Record) Get(name string) (jsontext.Value, bool) {
	if i := r.index(name); i >= 0 {
		return r.members[i].Value, true
	}
	return nil, false
}

// Has reports whether the member exists, whatever its value.
func (r Record) Has(name string) bool {
	return r.index(name) >= 0
}

// Present reports whether the member exists and is not JSON null.
func (r Record) Present(name string) bool {
	v, ok := r.Get(name)
	return ok && v.Kind() != 'n'
}

// With returns a copy of r where name is set to value. An existing member
// keeps its position; a new one is appended. A nil value removes the member.
func (r Record) With(name string, value jsontext.Value) Record {
	if value == nil {
		return r.Without(name)
	}
	out := make([]Member, len(r.members), len(r.members)+1)
	copy(out, r.members)
	if i := r.index(name); i >= 0 {
		out[i].Value = value
		return Record{members: out}
	}
	return Record{members: append(out, Member{Name: name, Value: value})}
}

// Without returns a copy of r with the named members removed.
func (r Record) Without(names ...string) Record {
	out := make([]Member, 0, len(r.members))
outer:
	for _, m := range r.members {
		for _, n := range names {
			if m.Name == n {
				continue outer
			}
		}
		out = append(out, m)
	}
	return Record{members: out}
}

// Rename moves the value of from to a member named to. The new member takes
// the position of an existing "to" member, or is appended. If from is absent
// the record is returned unchanged.
func (r Record) Rename(from, to string) Record {
	v, ok := r.Get(from)
	if !ok {
		return r
	}
	return r.With(to, v).Without(from)
}

// MarshalJSON writes the record as a compact JSON object in member order.
func (r Record) MarshalJSON() ([]byte, error) {
	return r.AppendJSON(nil)
}

// AppendJSON appends the compact JSON encoding of r to dst.
func (r Record) AppendJSON(dst []byte) ([]byte, error) {
	dst = append(dst, '{')
	for i, m := range r.members {
		if i > 0 {
			dst = append(dst, ',')
		}
		var err error
		dst, err = jsontext.AppendQuote(dst, m.Name)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", m.Name, err)
		}
		dst = append(dst, ':')
		dst = append(dst, m.Value...)
	}
	return append(dst, '}'), nil
}

// String returns the JSON encoding of r, or an error marker.
func (r Record) String() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid record: %v>", err)
	}
	return string(b)
}
