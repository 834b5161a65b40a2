package classify

// Kind is the discriminant written to the "kind" member of every normalized record.
type Kind string

const (
	KindIntrinsic                Kind = "Intrinsic"
	KindUnion                    Kind = "Union"
	KindAliasedUnion             Kind = "AliasedUnion"
	KindIntersection             Kind = "Intersection"
	KindAliasedIntersection      Kind = "AliasedIntersection"
	KindIndexedAccess            Kind = "IndexedAccess"
	KindAliasedIndexedAccess     Kind = "AliasedIndexedAccess"
	KindIndexType                Kind = "IndexType"
	KindAliasedIndexType         Kind = "AliasedIndexType"
	KindTuple                    Kind = "Tuple"
	KindAliasedTuple             Kind = "AliasedTuple"
	KindConditionalType          Kind = "ConditionalType"
	KindAliasedConditionalType   Kind = "AliasedConditionalType"
	KindSubstitutionType         Kind = "SubstitutionType"
	KindAliasedSubstitutionType  Kind = "AliasedSubstitutionType"
	KindReverseMappedType        Kind = "ReverseMappedType"
	KindAliasedReverseMappedType Kind = "AliasedReverseMappedType"
	KindGenericTypeAlias         Kind = "GenericTypeAlias"
	KindGenericType              Kind = "GenericType"
	KindGenericInstantiation     Kind = "GenericInstantiation"
	KindDestructuring            Kind = "Destructuring"
	KindStringLiteral            Kind = "StringLiteral"
	KindNumberLiteral            Kind = "NumberLiteral"
	KindBigIntLiteral            Kind = "BigIntLiteral"
	KindTypeParameter            Kind = "TypeParameter"
	KindUnique                   Kind = "Unique"
	KindKnownSymbol              Kind = "KnownSymbol"
	KindAnonymousFunction        Kind = "AnonymousFunction"
	KindAnonymousType            Kind = "AnonymousType"
	KindAnonymousClass           Kind = "AnonymousClass"
	KindAnonymousObject          Kind = "AnonymousObject"
	KindJsxAttributesType        Kind = "JsxAttributesType"
	KindObject                   Kind = "Object"
	KindJsxElementSignature      Kind = "JsxElementSignature"
	KindOther                    Kind = "Other"
)

// aliasedPrefix marks a structural kind that also carries a user-level name.
const aliasedPrefix = "Aliased"

var vocabulary = []Kind{
	KindIntrinsic,
	KindUnion, KindAliasedUnion,
	KindIntersection, KindAliasedIntersection,
	KindIndexedAccess, KindAliasedIndexedAccess,
	KindIndexType, KindAliasedIndexType,
	KindTuple, KindAliasedTuple,
	KindConditionalType, KindAliasedConditionalType,
	KindSubstitutionType, KindAliasedSubstitutionType,
	KindReverseMappedType, KindAliasedReverseMappedType,
	KindGenericTypeAlias,
	KindGenericType, KindGenericInstantiation,
	KindDestructuring,
	KindStringLiteral, KindNumberLiteral, KindBigIntLiteral,
	KindTypeParameter,
	KindUnique,
	KindKnownSymbol,
	KindAnonymousFunction, KindAnonymousType, KindAnonymousClass, KindAnonymousObject,
	KindJsxAttributesType,
	KindObject,
	KindJsxElementSignature,
	KindOther,
}

// Kinds returns every kind the engine can produce.
func Kinds() []Kind {
	return append([]Kind(nil), vocabulary...)
}

// IsKnown reports whether k is part of the vocabulary.
func IsKnown(k Kind) bool {
	for _, v := range vocabulary {
		if v == k {
			return true
		}
	}
	return false
}

// aliased returns the Aliased variant of a structural kind when named is true.
func aliased(k Kind, named bool) Kind {
	if named {
		return aliasedPrefix + k
	}
	return k
}
