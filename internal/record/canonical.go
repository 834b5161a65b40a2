package record

// leadingFields are written first, in this order, when present.
var leadingFields = []string{
	"id",
	"kind",
	"name",
	"aliasTypeArguments",
	"instantiatedType",
	"typeArguments",
}

// trailingFields are written last, in this order, when present.
var trailingFields = []string{
	"location",
	"display",
}

// Canonicalize reorders the members of a normalized record into the fixed
// output order used for stable diffing:
//
//	id, kind, name, aliasTypeArguments, instantiatedType, typeArguments,
//	<every other member in first-introduced order>,
//	location, display
//
// Members that are absent are skipped. Canonicalize is idempotent and never
// adds, drops or rewrites a value.
func Canonicalize(r Record) Record {
	out := make([]Member, 0, len(r.members))

	for _, name := range leadingFields {
		if i := r.index(name); i >= 0 {
			out = append(out, r.members[i])
		}
	}

	for _, m := range r.members {
		if isFixed(m.Name) {
			continue
		}
		out = append(out, m)
	}

	for _, name := range trailingFields {
		if i := r.index(name); i >= 0 {
			out = append(out, r.members[i])
		}
	}

	return Record{members: out}
}

func isFixed(name string) bool {
	for _, f := range leadingFields {
		if f == name {
			return true
		}
	}
	for _, f := range trailingFields {
		if f == name {
			return true
		}
	}
	return false
}
