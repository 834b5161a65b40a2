package record

import (
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// String returns a JSON string value.
func String(s string) jsontext.Value {
	b, err := jsontext.AppendQuote(nil, s)
	if err != nil {
		// Invalid UTF-8 is the only failure; fall back to the replacement-character encoding.
		b, _ = json.Marshal(s, jsontext.AllowInvalidUTF8(true))
	}
	return jsontext.Value(b)
}

// Int returns a JSON number value.
func Int(n int64) jsontext.Value {
	return jsontext.Value(strconv.AppendInt(nil, n, 10))
}

// Object returns r encoded as a JSON object value.
func Object(r Record) jsontext.Value {
	b, err := r.AppendJSON(nil)
	if err != nil {
		return nil
	}
	return jsontext.Value(b)
}

// DecodeString decodes a JSON string value. ok is false for any other kind.
func DecodeString(v jsontext.Value) (string, bool) {
	if v.Kind() != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// DecodeNumber decodes a JSON number value. ok is false for any other kind.
func DecodeNumber(v jsontext.Value) (float64, bool) {
	if v.Kind() != '0' {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0, false
	}
	return f, true
}

// StringField returns the named member as a Go string.
// ok is false when the member is absent or not a JSON string.
func (r Record) StringField(name string) (string, bool) {
	v, ok := r.Get(name)
	if !ok {
		return "", false
	}
	return DecodeString(v)
}

// NumberField returns the named member as a float64.
// ok is false when the member is absent or not a JSON number.
func (r Record) NumberField(name string) (float64, bool) {
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	return DecodeNumber(v)
}

// ArrayLen returns the number of elements of the named array member.
// ok is false when the member is absent or not a JSON array.
func (r Record) ArrayLen(name string) (int, bool) {
	v, ok := r.Get(name)
	if !ok || v.Kind() != '[' {
		return 0, false
	}
	var elems []jsontext.Value
	if err := json.Unmarshal(v, &elems); err != nil {
		return 0, false
	}
	return len(elems), true
}

// StringsField returns the string elements of the named array member.
// Non-string elements are skipped.
func (r Record) StringsField(name string) ([]string, bool) {
	v, ok := r.Get(name)
	if !ok || v.Kind() != '[' {
		return nil, false
	}
	var elems []jsontext.Value
	if err := json.Unmarshal(v, &elems); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if e.Kind() != '"' {
			continue
		}
		var s string
		if err := json.Unmarshal(e, &s); err == nil {
			out = append(out, s)
		}
	}
	return out, true
}

// ObjectField returns the named member as a nested Record.
// ok is false when the member is absent or not a JSON object.
func (r Record) ObjectField(name string) (Record, bool) {
	v, ok := r.Get(name)
	if !ok || v.Kind() != '{' {
		return Record{}, false
	}
	nested, err := Parse(v)
	if err != nil {
		return Record{}, false
	}
	return nested, true
}
