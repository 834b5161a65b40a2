package classify

import (
	"github.com/go-json-experiment/json/jsontext"

	"github.com/roach88/typetrace/internal/record"
)

// Subject is a raw record after preprocessing, as seen by the rule table.
type Subject struct {
	// Fields holds the record with symbolName renamed to name and flags,
	// display, recursionId and every location source removed.
	Fields record.Record

	// Flags is the set of category tags from the raw "flags" member.
	Flags map[string]bool

	// Display is the raw "display" value, nil when absent.
	Display jsontext.Value

	// Location is the resolved {path, line, char} object; valid when HasLocation.
	Location    record.Record
	HasLocation bool

	// Destructuring is true when the raw record carried a destructuringPattern.
	Destructuring bool
}

// Preprocess applies the unconditional rewrites that precede classification.
func Preprocess(raw record.Record) Subject {
	s := Subject{
		Flags:         make(map[string]bool),
		Destructuring: raw.Present("destructuringPattern"),
	}

	s.Location, s.HasLocation = record.ResolveLocation(raw)

	if flags, ok := raw.StringsField("flags"); ok {
		for _, f := range flags {
			s.Flags[f] = true
		}
	}
	if v, ok := raw.Get("display"); ok && v.Kind() != 'n' {
		s.Display = v
	}

	fields := raw.Rename("symbolName", "name")
	fields = fields.Without(record.LocationSources()...)
	s.Fields = fields.Without("flags", "display", "recursionId")

	return s
}

// HasFlag reports whether the raw flags contained f.
func (s Subject) HasFlag(f string) bool {
	return s.Flags[f]
}

// Name returns the record's display name. ok is false when there is no name
// or it is not a non-empty string.
func (s Subject) Name() (string, bool) {
	name, ok := s.Fields.StringField("name")
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// Named reports whether the record carries a non-empty name.
func (s Subject) Named() bool {
	_, ok := s.Name()
	return ok
}

// DisplayString returns the display value as a Go string.
func (s Subject) DisplayString() (string, bool) {
	return record.DecodeString(s.Display)
}
