package record

// Location source fields, in the order they are consulted.
var locationSources = []string{"destructuringPattern", "referenceLocation", "firstDeclaration"}

// LocationSources returns the raw members a location may be recovered from,
// highest priority first.
func LocationSources() []string {
	return append([]string(nil), locationSources...)
}

// ResolveLocation picks the first present location source of r and converts
// it to {"path", "line", "char"}. Members missing on the node are left out.
// ok is false when none of the sources is present.
func ResolveLocation(r Record) (Record, bool) {
	for _, name := range locationSources {
		if !r.Present(name) {
			continue
		}
		node, _ := r.ObjectField(name)
		return locationFromNode(node), true
	}
	return Record{}, false
}

func locationFromNode(node Record) Record {
	path, _ := node.Get("path")
	start, _ := node.ObjectField("start")
	line, _ := start.Get("line")
	char, _ := start.Get("character")
	return New(
		Member{Name: "path", Value: path},
		Member{Name: "line", Value: line},
		Member{Name: "char", Value: char},
	)
}
