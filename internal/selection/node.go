// Package selection binds a parsed query document against a schema and
// normalizes it into a tree the planner and compiler can walk without ever
// touching the AST again. Fragments are flattened, directives applied and
// arguments coerced during binding.
package selection

import (
	"github.com/jerber/fastgql/internal/language"
	"github.com/jerber/fastgql/internal/schema"
)

// Node is one requested field. For composite fields Children holds the
// selections every concrete type shares, and Branches holds the selections
// that apply only when the runtime value turns out to be a particular member
// of an interface or union, keyed by that member's type name.
type Node struct {
	Name  string
	Alias string

	// Field is nil only for the __typename meta field.
	Field *schema.Field

	// Type is the named type behind Field's type ref, nil for leaves.
	Type *schema.Type

	// Args is keyed by the model-side argument name, so resolvers and
	// relation argument specs read them without translating back.
	Args map[string]any

	Children []*Node
	Branches map[string][]*Node

	Position *language.Position
}

// ResponseName is the key under which this node appears in the response.
func (n *Node) ResponseName() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Name
}

// Child finds a direct child by response name.
func (n *Node) Child(responseName string) *Node {
	for _, c := range n.Children {
		if c.ResponseName() == responseName {
			return c
		}
	}
	return nil
}

// Bound is a validated operation: the root selections plus everything needed
// to execute them.
type Bound struct {
	Operation *language.OperationDefinition
	RootType  *schema.Type
	Nodes     []*Node
	Variables map[string]any
}
