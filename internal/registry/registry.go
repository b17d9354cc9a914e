package registry

import (
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/jerber/fastgql/internal/schema"
)

// privatePrefix keeps a field or resolver off the schema.
const privatePrefix = "_"

// Registry accumulates type descriptors. It is mutable only while the schema
// is being built; Build hands out an immutable schema and the registry is
// not consulted again per request.
type Registry struct {
	types map[string]*schema.Type

	models map[*Model]*schema.Type
	unions map[*Union]*schema.Type
	enums  map[*Enum]*schema.Type

	// owner tracks which definition claimed each exposed name, so two
	// distinct models registering under one name fail loudly.
	owner map[string]any

	goTypes map[reflect.Type]string
}

func New() *Registry {
	r := &Registry{
		types:   make(map[string]*schema.Type),
		models:  make(map[*Model]*schema.Type),
		unions:  make(map[*Union]*schema.Type),
		enums:   make(map[*Enum]*schema.Type),
		owner:   make(map[string]any),
		goTypes: make(map[reflect.Type]string),
	}
	for _, t := range schema.BuiltinScalars {
		r.types[t.Name] = t
	}
	return r
}

// Types exposes the registered descriptors keyed by name.
func (r *Registry) Types() map[string]*schema.Type { return r.types }

// Register maps a model definition to its type descriptor. Registration is
// idempotent per model identity: the descriptor is placed in the memo map
// before its fields are built, so re-entering for a model already in
// progress (a cycle) returns the placeholder instead of recursing forever.
func (r *Registry) Register(m *Model) (*schema.Type, error) {
	if t, ok := r.models[m]; ok {
		return t, nil
	}
	if err := r.claim(m.Name, m); err != nil {
		return nil, err
	}

	kind := schema.TypeKindObject
	if m.Interface {
		kind = schema.TypeKindInterface
	}
	t := &schema.Type{Name: m.Name, Kind: kind, Description: m.Description}
	if m.Table != "" {
		t.Storage = &schema.TableMapping{Table: m.Table, Discriminator: m.Discriminator}
	}
	r.models[m] = t
	r.types[m.Name] = t

	if m.GoType != nil {
		rt := reflect.TypeOf(m.GoType)
		for rt.Kind() == reflect.Pointer {
			rt = rt.Elem()
		}
		r.goTypes[rt] = m.Name
	}

	for _, iface := range m.Implements {
		it, err := r.Register(iface)
		if err != nil {
			return nil, err
		}
		if it.Kind != schema.TypeKindInterface {
			return nil, schemaErrorf("model %s implements %s, which is not an interface", m.Name, iface.Name)
		}
		t.Interfaces = append(t.Interfaces, it.Name)
		if !it.HasPossibleType(t.Name) {
			it.PossibleTypes = append(it.PossibleTypes, t.Name)
		}
	}

	seen := make(map[string]string) // exposed name -> model-side name
	for _, f := range m.Fields {
		if strings.HasPrefix(f.Name, privatePrefix) {
			continue
		}
		built, err := r.buildField(m, f)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[built.Name]; dup {
			return nil, schemaErrorf("type %s: %q and %q both map to field %q", m.Name, prev, f.Name, built.Name)
		}
		seen[built.Name] = f.Name
		t.Fields = append(t.Fields, built)
	}
	for _, res := range m.Resolvers {
		if strings.HasPrefix(res.Name, privatePrefix) {
			continue
		}
		built, err := r.buildResolverField(m, res)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[built.Name]; dup {
			return nil, schemaErrorf("type %s: %q and %q both map to field %q", m.Name, prev, res.Name, built.Name)
		}
		seen[built.Name] = res.Name
		t.Fields = append(t.Fields, built)
	}
	return t, nil
}

func (r *Registry) buildField(m *Model, f Field) (*schema.Field, error) {
	name, err := r.exposedName(m.Name, f.Name)
	if err != nil {
		return nil, err
	}
	ref, err := r.typeRefFor(f.Type)
	if err != nil {
		return nil, schemaErrorf("type %s, field %s: %v", m.Name, f.Name, err)
	}
	sf := &schema.Field{
		Name:        name,
		Description: f.Description,
		Type:        ref,
		Resolve:     schema.Resolution{Kind: schema.ResolveAttribute, Attribute: f.Name},
	}
	if f.Column != "" && f.Relation != nil {
		return nil, schemaErrorf("type %s, field %s: column and relation are mutually exclusive", m.Name, f.Name)
	}
	if f.Column != "" {
		sf.Storage = &schema.FieldMapping{Column: f.Column}
	}
	if f.Relation != nil {
		sf.Storage = &schema.FieldMapping{Relation: r.relationMapping(f.Relation, ref)}
	}
	return sf, nil
}

func (r *Registry) buildResolverField(m *Model, res Resolver) (*schema.Field, error) {
	name, err := r.exposedName(m.Name, res.Name)
	if err != nil {
		return nil, err
	}
	if res.Func == nil {
		return nil, schemaErrorf("type %s, resolver %s: missing function", m.Name, res.Name)
	}
	ref, err := r.typeRefFor(res.Returns)
	if err != nil {
		return nil, schemaErrorf("type %s, resolver %s: %v", m.Name, res.Name, err)
	}
	kind := schema.ResolveSync
	if res.Async {
		kind = schema.ResolveAsync
	}
	sf := &schema.Field{
		Name:        name,
		Description: res.Description,
		Type:        ref,
		Resolve:     schema.Resolution{Kind: kind, Attribute: res.Name, Func: res.Func},
	}
	for _, a := range res.Args {
		iv, err := r.buildArg(m, res, a)
		if err != nil {
			return nil, err
		}
		sf.Arguments = append(sf.Arguments, iv)
	}
	if res.Relation != nil {
		sf.Storage = &schema.FieldMapping{Relation: r.relationMapping(res.Relation, ref)}
	}
	return sf, nil
}

func (r *Registry) buildArg(m *Model, res Resolver, a Arg) (*schema.InputValue, error) {
	name, err := r.exposedName(m.Name+"."+res.Name, a.Name)
	if err != nil {
		return nil, err
	}
	if a.Type.model != nil || a.Type.union != nil {
		return nil, schemaErrorf("type %s, resolver %s: parameter %s has unsupported object type", m.Name, res.Name, a.Name)
	}
	ref, err := r.typeRefFor(a.Type)
	if err != nil {
		return nil, schemaErrorf("type %s, resolver %s, parameter %s: %v", m.Name, res.Name, a.Name, err)
	}
	return &schema.InputValue{
		Name:         name,
		ModelName:    a.Name,
		Description:  a.Description,
		Type:         ref,
		DefaultValue: a.Default,
		HasDefault:   a.HasDefault,
	}, nil
}

func (r *Registry) relationMapping(rel *Relation, ref *schema.TypeRef) *schema.RelationMapping {
	card := schema.One
	if ref.IsList() {
		card = schema.Many
	}
	return &schema.RelationMapping{
		FromWhere:   rel.FromWhere,
		Cardinality: card,
		Args:        rel.Args,
		Update:      rel.Update,
	}
}

// typeRefFor resolves a declared type expression to a TypeRef, registering
// any referenced model, union or enum it has not seen yet.
func (r *Registry) typeRefFor(t TypeExpr) (*schema.TypeRef, error) {
	if t.isZero() {
		return nil, schemaErrorf("missing type expression")
	}
	var ref *schema.TypeRef
	switch {
	case t.elem != nil:
		inner, err := r.typeRefFor(*t.elem)
		if err != nil {
			return nil, err
		}
		ref = schema.ListType(inner)
	case t.scalar != "":
		if !schema.IsBuiltinScalar(t.scalar) {
			return nil, schemaErrorf("cannot map %q to a GraphQL scalar", t.scalar)
		}
		ref = schema.NamedType(t.scalar)
	case t.model != nil:
		mt, err := r.Register(t.model)
		if err != nil {
			return nil, err
		}
		ref = schema.NamedType(mt.Name)
	case t.union != nil:
		ut, err := r.registerUnion(t.union)
		if err != nil {
			return nil, err
		}
		ref = schema.NamedType(ut.Name)
	case t.enum != nil:
		et, err := r.registerEnum(t.enum)
		if err != nil {
			return nil, err
		}
		ref = schema.NamedType(et.Name)
	}
	if !t.nullable {
		ref = schema.NonNullType(ref)
	}
	return ref, nil
}

func (r *Registry) registerUnion(u *Union) (*schema.Type, error) {
	if t, ok := r.unions[u]; ok {
		return t, nil
	}
	if err := r.claim(u.Name, u); err != nil {
		return nil, err
	}
	t := &schema.Type{Name: u.Name, Kind: schema.TypeKindUnion, Description: u.Description}
	if u.Table != "" {
		t.Storage = &schema.TableMapping{Table: u.Table, Discriminator: u.Discriminator}
	}
	r.unions[u] = t
	r.types[u.Name] = t
	for _, m := range u.Members {
		if m.Interface {
			return nil, schemaErrorf("union %s: member %s must be an object type", u.Name, m.Name)
		}
		mt, err := r.Register(m)
		if err != nil {
			return nil, err
		}
		if !t.HasPossibleType(mt.Name) {
			t.PossibleTypes = append(t.PossibleTypes, mt.Name)
		}
	}
	return t, nil
}

func (r *Registry) registerEnum(e *Enum) (*schema.Type, error) {
	if t, ok := r.enums[e]; ok {
		return t, nil
	}
	if err := r.claim(e.Name, e); err != nil {
		return nil, err
	}
	t := &schema.Type{Name: e.Name, Kind: schema.TypeKindEnum, Description: e.Description}
	for _, v := range e.Values {
		t.EnumValues = append(t.EnumValues, &schema.EnumValue{Name: v})
	}
	r.enums[e] = t
	r.types[e.Name] = t
	return t, nil
}

// claim reserves an exposed type name for one definition.
func (r *Registry) claim(name string, def any) error {
	if name == "" {
		return schemaErrorf("definition with empty name")
	}
	if prev, ok := r.owner[name]; ok && prev != def {
		return schemaErrorf("two distinct definitions registered under name %q", name)
	}
	if _, reserved := r.types[name]; reserved && r.owner[name] == nil {
		return schemaErrorf("name %q collides with a builtin type", name)
	}
	r.owner[name] = def
	return nil
}

// exposedName translates a model-side snake_case member name to the
// client-facing lowerCamel name. The translation must be lossless in both
// directions so the selection binder can map names deterministically.
func (r *Registry) exposedName(owner, name string) (string, error) {
	exposed := strcase.ToLowerCamel(name)
	if strcase.ToSnake(exposed) != name {
		return "", schemaErrorf("%s: name %q does not convert losslessly to %q and back", owner, name, exposed)
	}
	return exposed, nil
}

// TypeNamer returns the function used at execution time to find the concrete
// type name of an interface or union value. It checks, in order: the Typer
// interface, a "__typename" key on map values, and the Go types declared on
// registered models.
func (r *Registry) TypeNamer() func(v any) string {
	goTypes := r.goTypes
	return func(v any) string {
		if t, ok := v.(Typer); ok {
			return t.GraphQLTypeName()
		}
		if m, ok := v.(map[string]any); ok {
			if n, ok := m["__typename"].(string); ok {
				return n
			}
		}
		rt := reflect.TypeOf(v)
		if rt == nil {
			return ""
		}
		for rt.Kind() == reflect.Pointer {
			rt = rt.Elem()
		}
		return goTypes[rt]
	}
}

// Typer lets resolver-produced values name their own GraphQL type.
type Typer interface {
	GraphQLTypeName() string
}
