package introspection

import (
	"context"

	"github.com/jerber/fastgql/internal/schema"
)

func schemaType() *schema.Type {
	return &schema.Type{
		Name:        "__Schema",
		Kind:        schema.TypeKindObject,
		Description: "A GraphQL Schema defines the capabilities of a GraphQL server.",
		Fields: []*schema.Field{
			metaField("types", "A list of all types supported by this server.",
				schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__Type")))),
				func(src *schema.Schema, args map[string]any) any { return sortedTypes(src) }),
			metaField("queryType", "The type that query operations will be rooted at.",
				schema.NonNullType(schema.NamedType("__Type")),
				func(src *schema.Schema, args map[string]any) any { return src.GetQueryType() }),
			metaField("mutationType", "If this server supports mutation, the type that mutation operations will be rooted at.",
				schema.NamedType("__Type"),
				func(src *schema.Schema, args map[string]any) any {
					if t := src.GetMutationType(); t != nil {
						return t
					}
					return nil
				}),
			metaField("subscriptionType", "If this server supports subscription, the type that subscription operations will be rooted at.",
				schema.NamedType("__Type"),
				func(src *schema.Schema, args map[string]any) any { return nil }),
			metaField("directives", "A list of all directives supported by this server.",
				schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__Directive")))),
				func(src *schema.Schema, args map[string]any) any { return sortedDirectives(src) }),
			metaField("description", "A description of the schema.",
				schema.NamedType("String"),
				func(src *schema.Schema, args map[string]any) any { return src.Description }),
		},
	}
}

// typeType backs both named types and the LIST/NON_NULL wrappers around
// them, so its resolvers accept *schema.Type and *schema.TypeRef sources.
func typeType(sch *schema.Schema) *schema.Type {
	includeDeprecated := &schema.InputValue{
		Name:         "includeDeprecated",
		ModelName:    "includeDeprecated",
		Type:         schema.NamedType("Boolean"),
		DefaultValue: false,
		HasDefault:   true,
	}
	return &schema.Type{
		Name:        "__Type",
		Kind:        schema.TypeKindObject,
		Description: "The fundamental unit of any GraphQL Schema is the type.",
		Fields: []*schema.Field{
			typeField("kind", "The kind of type.", schema.NonNullType(schema.NamedType("__TypeKind")), sch,
				func(t *schema.Type, args map[string]any) any { return string(t.Kind) }),
			typeField("name", "The name of the type.", schema.NamedType("String"), sch,
				func(t *schema.Type, args map[string]any) any { return t.Name }),
			typeField("description", "The description of the type.", schema.NamedType("String"), sch,
				func(t *schema.Type, args map[string]any) any { return t.Description }),
			typeField("fields", "", schema.ListType(schema.NonNullType(schema.NamedType("__Field"))), sch,
				func(t *schema.Type, args map[string]any) any { return typeFields(t) },
				includeDeprecated),
			typeField("interfaces", "", schema.ListType(schema.NonNullType(schema.NamedType("__Type"))), sch,
				func(t *schema.Type, args map[string]any) any { return typeInterfaces(sch, t) }),
			typeField("possibleTypes", "", schema.ListType(schema.NonNullType(schema.NamedType("__Type"))), sch,
				func(t *schema.Type, args map[string]any) any { return typePossibleTypes(sch, t) }),
			typeField("enumValues", "", schema.ListType(schema.NonNullType(schema.NamedType("__EnumValue"))), sch,
				func(t *schema.Type, args map[string]any) any { return typeEnumValues(t) },
				includeDeprecated),
			typeField("inputFields", "", schema.ListType(schema.NonNullType(schema.NamedType("__InputValue"))), sch,
				func(t *schema.Type, args map[string]any) any { return nil }),
			{
				Name:        "ofType",
				Description: "The wrapped type of LIST and NON_NULL kinds.",
				Type:        schema.NamedType("__Type"),
				Resolve: syncResolve(func(ctx context.Context, source any, args map[string]any) (any, error) {
					if tr, ok := source.(*schema.TypeRef); ok && tr.Kind != schema.TypeRefKindNamed {
						return tr.OfType, nil
					}
					return nil, nil
				}),
			},
		},
	}
}

func fieldType() *schema.Type {
	return &schema.Type{
		Name:        "__Field",
		Kind:        schema.TypeKindObject,
		Description: "Object and Interface types are described by a list of Fields.",
		Fields: []*schema.Field{
			fieldField("name", schema.NonNullType(schema.NamedType("String")),
				func(f *schema.Field) any { return f.Name }),
			fieldField("description", schema.NamedType("String"),
				func(f *schema.Field) any { return f.Description }),
			fieldField("args", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__InputValue")))),
				func(f *schema.Field) any { return sortedArguments(f) }),
			fieldField("type", schema.NonNullType(schema.NamedType("__Type")),
				func(f *schema.Field) any { return f.Type }),
			fieldField("isDeprecated", schema.NonNullType(schema.NamedType("Boolean")),
				func(f *schema.Field) any { return false }),
			fieldField("deprecationReason", schema.NamedType("String"),
				func(f *schema.Field) any { return nil }),
		},
	}
}

func inputValueType() *schema.Type {
	return &schema.Type{
		Name:        "__InputValue",
		Kind:        schema.TypeKindObject,
		Description: "Arguments provided to Fields or Directives.",
		Fields: []*schema.Field{
			inputValueField("name", schema.NonNullType(schema.NamedType("String")),
				func(v *schema.InputValue) any { return v.Name }),
			inputValueField("description", schema.NamedType("String"),
				func(v *schema.InputValue) any { return v.Description }),
			inputValueField("type", schema.NonNullType(schema.NamedType("__Type")),
				func(v *schema.InputValue) any { return v.Type }),
			inputValueField("defaultValue", schema.NamedType("String"),
				func(v *schema.InputValue) any { return defaultValueString(v) }),
			inputValueField("isDeprecated", schema.NonNullType(schema.NamedType("Boolean")),
				func(v *schema.InputValue) any { return false }),
			inputValueField("deprecationReason", schema.NamedType("String"),
				func(v *schema.InputValue) any { return nil }),
		},
	}
}

func enumValueType() *schema.Type {
	return &schema.Type{
		Name:        "__EnumValue",
		Kind:        schema.TypeKindObject,
		Description: "One of the possible values of an Enum.",
		Fields: []*schema.Field{
			enumValueField("name", schema.NonNullType(schema.NamedType("String")),
				func(v *schema.EnumValue) any { return v.Name }),
			enumValueField("description", schema.NamedType("String"),
				func(v *schema.EnumValue) any { return v.Description }),
			enumValueField("isDeprecated", schema.NonNullType(schema.NamedType("Boolean")),
				func(v *schema.EnumValue) any { return false }),
			enumValueField("deprecationReason", schema.NamedType("String"),
				func(v *schema.EnumValue) any { return nil }),
		},
	}
}

func directiveType() *schema.Type {
	return &schema.Type{
		Name:        "__Directive",
		Kind:        schema.TypeKindObject,
		Description: "A Directive provides a way to describe alternate runtime behavior.",
		Fields: []*schema.Field{
			directiveField("name", schema.NonNullType(schema.NamedType("String")),
				func(d *schema.Directive) any { return d.Name }),
			directiveField("description", schema.NamedType("String"),
				func(d *schema.Directive) any { return d.Description }),
			directiveField("isRepeatable", schema.NonNullType(schema.NamedType("Boolean")),
				func(d *schema.Directive) any { return false }),
			directiveField("locations", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__DirectiveLocation")))),
				func(d *schema.Directive) any { return directiveLocations(d) }),
			directiveField("args", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__InputValue")))),
				func(d *schema.Directive) any { return d.Arguments }),
		},
	}
}

func typeKindEnum() *schema.Type {
	return &schema.Type{
		Name:        "__TypeKind",
		Kind:        schema.TypeKindEnum,
		Description: "An enum describing what kind of type a given __Type is.",
		EnumValues: []*schema.EnumValue{
			{Name: "SCALAR"}, {Name: "OBJECT"}, {Name: "INTERFACE"}, {Name: "UNION"},
			{Name: "ENUM"}, {Name: "INPUT_OBJECT"}, {Name: "LIST"}, {Name: "NON_NULL"},
		},
	}
}

func directiveLocationEnum() *schema.Type {
	return &schema.Type{
		Name:        "__DirectiveLocation",
		Kind:        schema.TypeKindEnum,
		Description: "A Directive can be adjacent to many parts of the GraphQL language.",
		EnumValues: []*schema.EnumValue{
			{Name: "QUERY"}, {Name: "MUTATION"}, {Name: "FIELD"},
			{Name: "FRAGMENT_DEFINITION"}, {Name: "FRAGMENT_SPREAD"}, {Name: "INLINE_FRAGMENT"},
		},
	}
}
