package schema

// Builtin scalar types registered into every schema.
var BuiltinScalars = []*Type{
	{
		Name:        "String",
		Kind:        TypeKindScalar,
		Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
	},
	{
		Name:        "Int",
		Kind:        TypeKindScalar,
		Description: "The `Int` scalar type represents non-fractional signed whole numeric values.",
	},
	{
		Name:        "Float",
		Kind:        TypeKindScalar,
		Description: "The `Float` scalar type represents signed double-precision fractional values.",
	},
	{
		Name:        "Boolean",
		Kind:        TypeKindScalar,
		Description: "The `Boolean` scalar type represents `true` or `false`.",
	},
	{
		Name:        "ID",
		Kind:        TypeKindScalar,
		Description: "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
	},
	{
		Name:        "DateTime",
		Kind:        TypeKindScalar,
		Description: "An ISO-8601 encoded UTC date-time string.",
	},
	{
		Name:        "Date",
		Kind:        TypeKindScalar,
		Description: "An ISO-8601 encoded calendar date string.",
	},
	{
		Name:        "UUID",
		Kind:        TypeKindScalar,
		Description: "A universally unique identifier in canonical textual form.",
	},
}

// IsBuiltinScalar reports whether name is one of the scalars above.
func IsBuiltinScalar(name string) bool {
	for _, t := range BuiltinScalars {
		if t.Name == name {
			return true
		}
	}
	return false
}

var boolNonNull = NonNullType(NamedType("Boolean"))

// BuiltinDirectives holds the two executable directives every compliant
// schema carries. The selection binder honors them; they are listed here so
// introspection can report them.
var BuiltinDirectives = []*Directive{
	{
		Name:        "include",
		Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
		Locations:   []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
		Arguments: []*InputValue{
			{Name: "if", ModelName: "if", Description: "Included when true.", Type: boolNonNull},
		},
	},
	{
		Name:        "skip",
		Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
		Locations:   []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
		Arguments: []*InputValue{
			{Name: "if", ModelName: "if", Description: "Skipped when true.", Type: boolNonNull},
		},
	},
}
