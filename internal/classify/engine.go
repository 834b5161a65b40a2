package classify

import (
	"github.com/go-json-experiment/json/jsontext"

	"github.com/roach88/typetrace/internal/record"
)

// Engine evaluates a rule table against raw records.
type Engine struct {
	rules []Rule
}

// New creates an engine over the given rules, or over the default table
// when none are given. The catch-all "other" rule is always evaluated last,
// so a custom table cannot make Classify partial.
func New(custom ...Rule) *Engine {
	if len(custom) == 0 {
		return &Engine{rules: Rules()}
	}
	return &Engine{rules: append(append([]Rule(nil), custom...), otherRule)}
}

// Classify returns the classified record for raw. Member order is the
// first-introduced order; use record.Canonicalize for output order.
func (e *Engine) Classify(raw record.Record) record.Record {
	s := Preprocess(raw)
	rule, _ := e.Match(s)

	out := rule.Apply(s)
	if s.HasLocation {
		out = out.With("location", record.Object(s.Location))
	}
	if keepDisplay(rule.Display, s) {
		out = out.With("display", s.Display)
	}
	return out
}

// Normalize classifies raw and puts its members in output order.
func (e *Engine) Normalize(raw record.Record) record.Record {
	return record.Canonicalize(e.Classify(raw))
}

// Match returns the first rule matching s and its position in the table.
func (e *Engine) Match(s Subject) (Rule, int) {
	for i, r := range e.rules {
		if r.Match(s) {
			return r, i
		}
	}
	return otherRule, len(e.rules)
}

func keepDisplay(p DisplayPolicy, s Subject) bool {
	switch p {
	case DisplayKeep:
		return true
	case DisplayUnlessLocated:
		return !s.HasLocation
	default:
		return false
	}
}

// truthy mirrors the tracer's loose boolean checks: false, null, 0 and ""
// are falsy, everything else is truthy.
func truthy(v jsontext.Value) bool {
	switch v.Kind() {
	case 't', '{', '[':
		return true
	case '"':
		return string(v) != `""`
	case '0':
		n, _ := record.DecodeNumber(v)
		return n != 0
	default:
		return false
	}
}
