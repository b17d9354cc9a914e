package introspection

import (
	"context"
	"fmt"
	"sort"

	"github.com/jerber/fastgql/internal/schema"
)

func metaField(name, description string, ref *schema.TypeRef, fn func(*schema.Schema, map[string]any) any) *schema.Field {
	return &schema.Field{
		Name:        name,
		Description: description,
		Type:        ref,
		Resolve: syncResolve(func(ctx context.Context, source any, args map[string]any) (any, error) {
			if src, ok := source.(*schema.Schema); ok {
				return fn(src, args), nil
			}
			return nil, nil
		}),
	}
}

// typeField resolves a __Type field for both named type and wrapper-ref
// sources. Wrappers answer only kind; everything else delegates to the
// named type they wrap.
func typeField(name, description string, ref *schema.TypeRef, sch *schema.Schema, fn func(*schema.Type, map[string]any) any, arguments ...*schema.InputValue) *schema.Field {
	return &schema.Field{
		Name:        name,
		Description: description,
		Type:        ref,
		Arguments:   arguments,
		Resolve: syncResolve(func(ctx context.Context, source any, args map[string]any) (any, error) {
			switch src := source.(type) {
			case *schema.Type:
				return fn(src, args), nil
			case *schema.TypeRef:
				if src.Kind != schema.TypeRefKindNamed {
					if name != "kind" {
						return nil, nil
					}
					if src.Kind == schema.TypeRefKindList {
						return "LIST", nil
					}
					return "NON_NULL", nil
				}
				if t := sch.Types[src.Named]; t != nil {
					return fn(t, args), nil
				}
			}
			return nil, nil
		}),
	}
}

func fieldField(name string, ref *schema.TypeRef, fn func(*schema.Field) any) *schema.Field {
	return &schema.Field{
		Name: name,
		Type: ref,
		Resolve: syncResolve(func(ctx context.Context, source any, args map[string]any) (any, error) {
			if src, ok := source.(*schema.Field); ok {
				return fn(src), nil
			}
			return nil, nil
		}),
	}
}

func inputValueField(name string, ref *schema.TypeRef, fn func(*schema.InputValue) any) *schema.Field {
	return &schema.Field{
		Name: name,
		Type: ref,
		Resolve: syncResolve(func(ctx context.Context, source any, args map[string]any) (any, error) {
			if src, ok := source.(*schema.InputValue); ok {
				return fn(src), nil
			}
			return nil, nil
		}),
	}
}

func enumValueField(name string, ref *schema.TypeRef, fn func(*schema.EnumValue) any) *schema.Field {
	return &schema.Field{
		Name: name,
		Type: ref,
		Resolve: syncResolve(func(ctx context.Context, source any, args map[string]any) (any, error) {
			if src, ok := source.(*schema.EnumValue); ok {
				return fn(src), nil
			}
			return nil, nil
		}),
	}
}

func directiveField(name string, ref *schema.TypeRef, fn func(*schema.Directive) any) *schema.Field {
	return &schema.Field{
		Name: name,
		Type: ref,
		Resolve: syncResolve(func(ctx context.Context, source any, args map[string]any) (any, error) {
			if src, ok := source.(*schema.Directive); ok {
				return fn(src), nil
			}
			return nil, nil
		}),
	}
}

func sortedTypes(sch *schema.Schema) []*schema.Type {
	out := make([]*schema.Type, 0, len(sch.Types))
	for _, t := range sch.Types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedDirectives(sch *schema.Schema) []*schema.Directive {
	out := make([]*schema.Directive, 0, len(sch.Directives))
	for _, d := range sch.Directives {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func typeFields(t *schema.Type) any {
	if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
		return nil
	}
	out := make([]*schema.Field, len(t.Fields))
	copy(out, t.Fields)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func typeInterfaces(sch *schema.Schema, t *schema.Type) any {
	if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
		return nil
	}
	out := []*schema.Type{}
	for _, name := range t.Interfaces {
		if def := sch.Types[name]; def != nil {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func typePossibleTypes(sch *schema.Schema, t *schema.Type) any {
	if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
		return nil
	}
	out := []*schema.Type{}
	for _, name := range t.PossibleTypes {
		if def := sch.Types[name]; def != nil {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func typeEnumValues(t *schema.Type) any {
	if t.Kind != schema.TypeKindEnum {
		return nil
	}
	return t.EnumValues
}

func sortedArguments(f *schema.Field) []*schema.InputValue {
	out := make([]*schema.InputValue, len(f.Arguments))
	copy(out, f.Arguments)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func defaultValueString(v *schema.InputValue) any {
	if !v.HasDefault || v.DefaultValue == nil {
		return nil
	}
	return fmt.Sprintf("%v", v.DefaultValue)
}

func directiveLocations(d *schema.Directive) []string {
	out := make([]string, len(d.Locations))
	copy(out, d.Locations)
	sort.Strings(out)
	return out
}
