// Package registry turns data-model definitions into GraphQL type
// descriptors and assembles them into a validated schema. Model definitions
// are plain data: the front end that produces them (struct tags, config,
// code generation) is not this package's concern.
package registry

import (
	"github.com/jerber/fastgql/internal/schema"
)

// Model describes one GraphQL-exposed object or interface type. Model
// identity is pointer identity: registering the same *Model twice yields the
// same descriptor, which is what lets mutually-recursive model graphs
// (Movie ↔ Person) terminate.
type Model struct {
	Name        string
	Description string

	// Interface marks the model as a GraphQL interface. Concrete members
	// point back at it through Implements.
	Interface  bool
	Implements []*Model

	Fields    []Field
	Resolvers []Resolver

	// Table and Discriminator back the compiled query path. Table may be
	// empty for models only reachable through resolvers. Discriminator is
	// the column naming the concrete type per row; it is required on
	// interface models whose members are selected polymorphically.
	Table         string
	Discriminator string

	// GoType is an optional sample value (e.g. Movie{}) whose dynamic type
	// identifies instances of this model at execution time when resolving
	// interface/union values to a concrete type name.
	GoType any
}

// Field is a plain data attribute on a model. Names use snake_case; the
// exposed name is derived from it. Names starting with "_" are kept off the
// schema entirely.
type Field struct {
	Name        string
	Description string
	Type        TypeExpr

	// Column backs the field with a projected column. Relation backs it with
	// a nested sub-selection of the field type's table. At most one is set;
	// neither means the field resolves by attribute only and the compiler
	// stops at it.
	Column   string
	Relation *Relation
}

// Resolver is a named callable on a model. Async resolvers are dispatched
// concurrently with their siblings; the distinction is fixed here, once, and
// never re-inspected per call.
type Resolver struct {
	Name        string
	Description string
	Args        []Arg
	Returns     TypeExpr
	Func        schema.ResolverFunc
	Async       bool

	// Relation optionally backs the resolver with a storage mapping, making
	// the field compilable when reached inside a compiled subtree. The
	// resolver remains the fallback on the naive path.
	Relation *Relation
}

// Arg is one declared resolver parameter. Argument types are restricted to
// scalars and enums.
type Arg struct {
	Name        string
	Description string
	Type        TypeExpr
	Default     any
	HasDefault  bool
}

// Relation declares the storage join for an object-valued field. FromWhere
// and Args use the compiler's $current/$parent/$arg token conventions; see
// schema.RelationMapping.
type Relation struct {
	FromWhere string
	Args      map[string]schema.ArgSpec
	Update    func(b schema.Clauses, args map[string]any) error
}

// Union declares a GraphQL union. Members share one table discriminated by
// the Discriminator column, mirroring how a polymorphic link selects
// "rows whose concrete type is T" in a single round trip.
type Union struct {
	Name          string
	Description   string
	Members       []*Model
	Table         string
	Discriminator string
}

// Enum declares a GraphQL enum.
type Enum struct {
	Name        string
	Description string
	Values      []string
}

// TypeExpr is a declared field, argument or return type. Expressions are
// non-null by default; wrap with Optional to allow null, matching how the
// model layer treats missing values as the exception.
type TypeExpr struct {
	scalar   string
	model    *Model
	union    *Union
	enum     *Enum
	elem     *TypeExpr
	nullable bool
}

// Scalar references a named scalar type ("String", "Int", "UUID", ...).
func Scalar(name string) TypeExpr { return TypeExpr{scalar: name} }

// Object references another model.
func Object(m *Model) TypeExpr { return TypeExpr{model: m} }

// OfUnion references a union.
func OfUnion(u *Union) TypeExpr { return TypeExpr{union: u} }

// OfEnum references an enum.
func OfEnum(e *Enum) TypeExpr { return TypeExpr{enum: e} }

// List wraps t in a non-null list.
func List(t TypeExpr) TypeExpr { return TypeExpr{elem: &t} }

// Optional makes t nullable.
func Optional(t TypeExpr) TypeExpr {
	t.nullable = true
	return t
}

func (t TypeExpr) isZero() bool {
	return t.scalar == "" && t.model == nil && t.union == nil && t.enum == nil && t.elem == nil
}
