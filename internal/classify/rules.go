package classify

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/typetrace/internal/record"
)

// DisplayPolicy decides whether the extracted display value is re-attached.
type DisplayPolicy int

const (
	// DisplayDrop leaves display off the output.
	DisplayDrop DisplayPolicy = iota
	// DisplayKeep always re-attaches display.
	DisplayKeep
	// DisplayUnlessLocated re-attaches display only when no location was resolved.
	DisplayUnlessLocated
)

// Rule is one predicate/transform pair of the classification table.
type Rule struct {
	// Name identifies the rule in tests and diagnostics.
	Name string

	// Match reports whether the rule applies to the subject.
	Match func(Subject) bool

	// Apply builds the output members, including "kind". Location and
	// display are attached by the engine.
	Apply func(Subject) record.Record

	Display DisplayPolicy
}

// knownSymbolPattern matches well-known symbol names such as "__@iterator@12".
var knownSymbolPattern = regexp.MustCompile(`^__@(.*)@\d+$`)

const knownSymbolPrefix = "__@"

// anonymousTags are the compiler's placeholder names for unnamed declarations.
var anonymousTags = []string{"__function", "__type", "__class", "__object"}

// anonymousKinds maps each placeholder name to its kind, e.g. __function -> AnonymousFunction.
var anonymousKinds = buildAnonymousKinds()

func buildAnonymousKinds() map[string]Kind {
	caser := cases.Title(language.Und)
	kinds := make(map[string]Kind, len(anonymousTags))
	for _, tag := range anonymousTags {
		kinds[tag] = Kind("Anonymous" + caser.String(strings.TrimPrefix(tag, "__")))
	}
	return kinds
}

const jsxAttributesName = "__jsxAttributes"

// rules is the classification table. Order matters: the first match wins.
var rules = []Rule{
	{
		Name:  "intrinsic",
		Match: present("intrinsicName"),
		Apply: func(s Subject) record.Record {
			v, _ := s.Fields.Get("intrinsicName")
			return withKind(s.Fields, KindIntrinsic).
				With("name", v).
				Without("intrinsicName")
		},
	},
	{
		Name:  "union",
		Match: present("unionTypes"),
		Apply: func(s Subject) record.Record {
			return members(s, KindUnion, "unionTypes")
		},
	},
	{
		Name:  "intersection",
		Match: present("intersectionTypes"),
		Apply: func(s Subject) record.Record {
			return members(s, KindIntersection, "intersectionTypes")
		},
	},
	{
		Name:  "indexed-access",
		Match: present("indexedAccessObjectType"),
		Apply: func(s Subject) record.Record {
			return withKind(s.Fields, aliased(KindIndexedAccess, s.Named()))
		},
	},
	{
		Name:  "index-type",
		Match: present("keyofType"),
		Apply: func(s Subject) record.Record {
			return withKind(s.Fields, aliased(KindIndexType, s.Named()))
		},
	},
	{
		Name: "tuple",
		Match: func(s Subject) bool {
			v, ok := s.Fields.Get("isTuple")
			return ok && truthy(v)
		},
		Apply: func(s Subject) record.Record {
			return withKind(s.Fields, aliased(KindTuple, s.Named())).Without("isTuple")
		},
	},
	{
		Name:  "conditional",
		Match: present("conditionalCheckType"),
		Apply: func(s Subject) record.Record {
			out := withKind(s.Fields, aliased(KindConditionalType, s.Named()))
			for _, branch := range []string{"conditionalTrueType", "conditionalFalseType"} {
				if !out.Has(branch) {
					continue
				}
				// Negative ids are the tracer's "no branch" sentinel.
				if n, ok := out.NumberField(branch); !ok || n < 0 {
					out = out.Without(branch)
				}
			}
			return out
		},
	},
	{
		Name:  "substitution",
		Match: present("substitutionBaseType"),
		Apply: func(s Subject) record.Record {
			return withKind(s.Fields, aliased(KindSubstitutionType, s.Named())).
				Rename("substitutionBaseType", "originalType")
		},
	},
	{
		Name:  "reverse-mapped",
		Match: present("reverseMappedSourceType"),
		Apply: func(s Subject) record.Record {
			return withKind(s.Fields, aliased(KindReverseMappedType, s.Named())).
				Rename("reverseMappedSourceType", "sourceType").
				Rename("reverseMappedMappedType", "mappedType").
				Rename("reverseMappedConstraintType", "constraintType")
		},
	},
	{
		Name:  "generic-type-alias",
		Match: present("aliasTypeArguments"),
		Apply: func(s Subject) record.Record {
			out := withKind(s.Fields, KindGenericTypeAlias)
			if v, ok := s.Fields.Get("instantiatedType"); ok {
				out = out.With("aliasedType", v)
			}
			if v, ok := s.Fields.Get("typeArguments"); ok {
				out = out.With("aliasedTypeTypeArguments", v)
			}
			return out.Without("instantiatedType")
		},
	},
	{
		Name: "generic",
		Match: func(s Subject) bool {
			if !s.Fields.Present("instantiatedType") {
				return false
			}
			n, ok := s.Fields.ArrayLen("typeArguments")
			return ok && n > 0
		},
		Apply: func(s Subject) record.Record {
			if instantiatesItself(s.Fields) {
				return withKind(s.Fields, KindGenericType).Without("instantiatedType")
			}
			return withKind(s.Fields, KindGenericInstantiation)
		},
	},
	{
		Name:  "destructuring",
		Match: func(s Subject) bool { return s.Destructuring },
		Apply: func(s Subject) record.Record {
			return withKind(s.Fields, KindDestructuring)
		},
	},
	literal("string-literal", "StringLiteral", KindStringLiteral),
	literal("number-literal", "NumberLiteral", KindNumberLiteral),
	literal("bigint-literal", "BigIntLiteral", KindBigIntLiteral),
	{
		Name:  "type-parameter",
		Match: flag("TypeParameter"),
		Apply: func(s Subject) record.Record {
			return withKind(s.Fields, KindTypeParameter)
		},
	},
	{
		Name:  "unique-symbol",
		Match: flag("UniqueESSymbol"),
		Apply: func(s Subject) record.Record {
			return withKind(s.Fields, KindUnique)
		},
	},
	{
		Name: "known-symbol",
		Match: func(s Subject) bool {
			name, ok := s.Name()
			return ok && strings.HasPrefix(name, knownSymbolPrefix)
		},
		Apply: func(s Subject) record.Record {
			out := withKind(s.Fields, KindKnownSymbol)
			name, _ := s.Name()
			if m := knownSymbolPattern.FindStringSubmatch(name); m != nil {
				out = out.With("name", record.String(m[1]))
			}
			return out
		},
	},
	{
		Name: "anonymous",
		Match: func(s Subject) bool {
			name, _ := s.Name()
			_, ok := anonymousKinds[name]
			return ok
		},
		Apply: func(s Subject) record.Record {
			name, _ := s.Name()
			return withKind(s.Fields, anonymousKinds[name]).Without("name")
		},
		Display: DisplayUnlessLocated,
	},
	{
		Name: "jsx-attributes",
		Match: func(s Subject) bool {
			name, _ := s.Name()
			return name == jsxAttributesName
		},
		Apply: func(s Subject) record.Record {
			return withKind(s.Fields, KindJsxAttributesType).Without("name")
		},
		Display: DisplayUnlessLocated,
	},
	{
		Name: "object",
		Match: func(s Subject) bool {
			return s.HasFlag("Object") && s.Named()
		},
		Apply: func(s Subject) record.Record {
			return withKind(s.Fields, KindObject)
		},
	},
	{
		// Heuristic: React function components render as "(props: P) => Element".
		Name: "jsx-element-signature",
		Match: func(s Subject) bool {
			d, ok := s.DisplayString()
			return ok && strings.HasPrefix(d, "(props:") && strings.HasSuffix(d, "=> Element")
		},
		Apply: func(s Subject) record.Record {
			return withKind(s.Fields, KindJsxElementSignature)
		},
		Display: DisplayKeep,
	},
	otherRule,
}

var otherRule = Rule{
	Name:    "other",
	Match:   func(Subject) bool { return true },
	Apply:   func(s Subject) record.Record { return withKind(s.Fields, KindOther) },
	Display: DisplayKeep,
}

// Rules returns a copy of the classification table in evaluation order.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

func withKind(r record.Record, k Kind) record.Record {
	return r.With("kind", record.String(string(k)))
}

func present(name string) func(Subject) bool {
	return func(s Subject) bool { return s.Fields.Present(name) }
}

func flag(f string) func(Subject) bool {
	return func(s Subject) bool { return s.HasFlag(f) }
}

// members handles union and intersection shapes: the member list moves to
// "types" and its length is recorded in "count".
func members(s Subject, k Kind, field string) record.Record {
	out := withKind(s.Fields, aliased(k, s.Named()))
	if n, ok := s.Fields.ArrayLen(field); ok {
		out = out.With("count", record.Int(int64(n)))
	}
	return out.Rename(field, "types")
}

func literal(name, f string, k Kind) Rule {
	return Rule{
		Name:  name,
		Match: flag(f),
		Apply: func(s Subject) record.Record {
			return withKind(s.Fields, k).With("value", s.Display)
		},
	}
}

// instantiatesItself reports whether instantiatedType points back at the
// record's own id, which marks a generic type definition.
func instantiatesItself(r record.Record) bool {
	target, ok1 := r.NumberField("instantiatedType")
	id, ok2 := r.NumberField("id")
	if ok1 && ok2 {
		return target == id
	}
	a, _ := r.Get("instantiatedType")
	b, _ := r.Get("id")
	return a != nil && bytes.Equal(a, b)
}
