package schema

// Storage mappings declare how a GraphQL type and its fields project onto the
// backing database so that a whole selection subtree can be compiled into one
// query. The compiler consumes these; nothing else does.

// Cardinality of a relation: a single row or a set of rows.
type Cardinality string

const (
	One  Cardinality = "ONE"
	Many Cardinality = "MANY"
)

// TableMapping backs an object, interface or union type with a table. For
// interfaces and unions the table is shared by every concrete member and the
// Discriminator column names the member type per row.
type TableMapping struct {
	Table         string
	Discriminator string
}

// FieldMapping backs a single field: exactly one of Column or Relation is
// set. Column projects a scalar/enum column; Relation nests a sub-selection
// of another mapped type.
type FieldMapping struct {
	Column   string
	Relation *RelationMapping
}

// RelationMapping describes a nested sub-selection. FromWhere is a join
// predicate in the target table's terms, with $current standing for the
// target table alias and $parent for the enclosing one, e.g.
// "$current.account_id = $parent.id". An empty FromWhere is permitted only on
// root fields, which select from the whole table.
type RelationMapping struct {
	FromWhere   string
	Cardinality Cardinality

	// Args translates declared GraphQL arguments into query clauses. Keyed by
	// the model-side argument name.
	Args map[string]ArgSpec

	// Update, when set, runs after the declarative parts are applied and may
	// adjust the sub-query builder with the coerced argument values. It is
	// the escape hatch for clauses Args cannot express.
	Update func(b Clauses, args map[string]any) error
}

// ArgKind says which clause an argument feeds.
type ArgKind string

const (
	ArgLimit   ArgKind = "LIMIT"
	ArgOffset  ArgKind = "OFFSET"
	ArgWhere   ArgKind = "WHERE"
	ArgOrderBy ArgKind = "ORDER_BY"
)

// ArgSpec declares the translation of one argument. For ArgWhere the
// Expression is a predicate with $current/$parent table tokens and $arg
// standing for the bound argument value, e.g. "$current.username = $arg".
// For ArgOrderBy the Expression is the ordering clause itself and the
// argument's value toggles it on.
type ArgSpec struct {
	Kind       ArgKind
	Expression string
}

// Clauses is the mutable view of a sub-query a RelationMapping.Update hook is
// given. Implemented by the compiler's builder.
type Clauses interface {
	SetLimit(n int)
	SetOffset(n int)
	AndWhere(predicate string, params ...any)
	SetOrderBy(clause string)
}
