// Package introspection extends a schema with the __schema and __type entry
// points and the __Type meta types behind them. Introspection fields carry
// ordinary resolver functions, so the executor needs no special handling.
package introspection

import (
	"context"

	"github.com/jerber/fastgql/internal/schema"
)

// Extend returns a copy of the schema answering introspection queries. The
// original schema stays untouched and is the one introspection describes,
// so meta types never show up in their own type list.
func Extend(original *schema.Schema) *schema.Schema {
	extended := &schema.Schema{
		QueryType:    original.QueryType,
		MutationType: original.MutationType,
		Types:        make(map[string]*schema.Type, len(original.Types)+8),
		Directives:   original.Directives,
		Description:  original.Description,
	}
	for name, t := range original.Types {
		extended.Types[name] = t
	}
	addMetaTypes(extended)

	queryType := extended.GetQueryType()
	if queryType == nil {
		return extended
	}
	queryCopy := &schema.Type{
		Name:        queryType.Name,
		Kind:        queryType.Kind,
		Description: queryType.Description,
		Fields:      make([]*schema.Field, len(queryType.Fields)),
		Interfaces:  queryType.Interfaces,
	}
	copy(queryCopy.Fields, queryType.Fields)

	queryCopy.Fields = append(queryCopy.Fields,
		&schema.Field{
			Name:        "__schema",
			Description: "Access the current type schema of this server.",
			Type:        schema.NonNullType(schema.NamedType("__Schema")),
			Resolve: syncResolve(func(ctx context.Context, source any, args map[string]any) (any, error) {
				return original, nil
			}),
		},
		&schema.Field{
			Name:        "__type",
			Description: "Request the type information of a single type.",
			Arguments: []*schema.InputValue{
				{
					Name:        "name",
					ModelName:   "name",
					Description: "The name of the type to look up.",
					Type:        schema.NonNullType(schema.NamedType("String")),
				},
			},
			Type: schema.NamedType("__Type"),
			Resolve: syncResolve(func(ctx context.Context, source any, args map[string]any) (any, error) {
				name, _ := args["name"].(string)
				if t, ok := original.Types[name]; ok {
					return t, nil
				}
				return nil, nil
			}),
		},
	)
	extended.Types[queryCopy.Name] = queryCopy
	return extended
}

func syncResolve(fn schema.ResolverFunc) schema.Resolution {
	return schema.Resolution{Kind: schema.ResolveSync, Func: fn}
}

func addMetaTypes(sch *schema.Schema) {
	sch.Types["__Schema"] = schemaType()
	sch.Types["__Type"] = typeType(sch)
	sch.Types["__Field"] = fieldType()
	sch.Types["__InputValue"] = inputValueType()
	sch.Types["__EnumValue"] = enumValueType()
	sch.Types["__Directive"] = directiveType()
	sch.Types["__TypeKind"] = typeKindEnum()
	sch.Types["__DirectiveLocation"] = directiveLocationEnum()
}
