package schema

import "context"

// Schema is the complete GraphQL schema. It is built once at startup by the
// registry and is read-only afterwards; request handling never mutates it.
type Schema struct {
	QueryType    string
	MutationType string
	Types        map[string]*Type // all named types keyed by exposed name
	Directives   map[string]*Directive
	Description  string
}

// GetQueryType returns the root query type (nil if absent).
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (nil if absent).
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// Type is a named GraphQL type.
type Type struct {
	Name          string
	Kind          TypeKind
	Description   string
	Fields        []*Field     // OBJECT and INTERFACE
	Interfaces    []string     // OBJECT: implemented interfaces
	PossibleTypes []string     // INTERFACE and UNION
	EnumValues    []*EnumValue // ENUM

	// Storage is the table mapping backing the compiled query path. Nil for
	// types that can only be reached through resolver functions.
	Storage *TableMapping
}

// Field looks up a field by its exposed name.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// HasPossibleType reports whether name is a concrete member of an interface
// or union type.
func (t *Type) HasPossibleType(name string) bool {
	for _, pt := range t.PossibleTypes {
		if pt == name {
			return true
		}
	}
	return false
}

type TypeKind string

const (
	TypeKindScalar    TypeKind = "SCALAR"
	TypeKindObject    TypeKind = "OBJECT"
	TypeKindInterface TypeKind = "INTERFACE"
	TypeKindUnion     TypeKind = "UNION"
	TypeKindEnum      TypeKind = "ENUM"
)

// ResolverFunc is the uniform signature every resolver is adapted to at
// registration time. Source is the parent value (nil for root fields) and
// args hold coerced argument values keyed by the model-side name.
type ResolverFunc func(ctx context.Context, source any, args map[string]any) (any, error)

// ResolveKind tags how a field's value is produced. The tag is fixed once at
// registration so the executor never re-inspects the model per call.
type ResolveKind string

const (
	// ResolveAttribute reads the value straight off the source object.
	ResolveAttribute ResolveKind = "PLAIN_ATTRIBUTE"
	// ResolveSync invokes Func inline.
	ResolveSync ResolveKind = "SYNC_RESOLVER"
	// ResolveAsync invokes Func on its own goroutine; siblings with the same
	// tag run concurrently.
	ResolveAsync ResolveKind = "ASYNC_RESOLVER"
)

// Resolution is a field's invocation strategy.
type Resolution struct {
	Kind ResolveKind
	// Attribute is the model-side (snake_case) name used for attribute
	// lookups on source values. Set for every field, since a compiled or
	// resolver-backed field can still be read off a prefetched parent map.
	Attribute string
	Func      ResolverFunc
}

// Field is a field on an object or interface type.
type Field struct {
	Name        string // exposed (lowerCamel) name
	Description string
	Type        *TypeRef
	Arguments   []*InputValue
	Resolve     Resolution

	// Storage maps the field onto the backing table: a projected column or a
	// relation to another mapped type. Nil means the field is not compilable
	// and the compiler must stop at it.
	Storage *FieldMapping
}

// Argument looks up an argument definition by exposed name.
func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Compilable reports whether the field participates in the compiled path.
func (f *Field) Compilable() bool { return f.Storage != nil }

// InputValue is an argument definition.
type InputValue struct {
	Name         string // exposed name
	ModelName    string // model-side (snake_case) name handed to resolvers
	Description  string
	Type         *TypeRef
	DefaultValue any
	HasDefault   bool
}

// Required reports whether the argument must be provided by the client.
func (v *InputValue) Required() bool { return v.Type.IsNonNull() && !v.HasDefault }

type EnumValue struct {
	Name        string
	Description string
}

type Directive struct {
	Name        string
	Description string
	Locations   []string
	Arguments   []*InputValue
}

// TypeRef references a (possibly wrapped) type.
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // LIST and NON_NULL
	Named  string   // NAMED
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }

func (t *TypeRef) IsNonNull() bool { return t != nil && t.Kind == TypeRefKindNonNull }

// IsList reports whether the reference is a list, looking through one
// Non-Null wrapper.
func (t *TypeRef) IsList() bool {
	if t == nil {
		return false
	}
	if t.Kind == TypeRefKindList {
		return true
	}
	return t.Kind == TypeRefKindNonNull && t.OfType != nil && t.OfType.Kind == TypeRefKindList
}

// Unwrap removes one layer of List or Non-Null wrapping.
func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

// NamedTypeName returns the innermost named type.
func (t *TypeRef) NamedTypeName() string {
	for cur := t; cur != nil; cur = cur.OfType {
		if cur.Named != "" {
			return cur.Named
		}
	}
	return ""
}
