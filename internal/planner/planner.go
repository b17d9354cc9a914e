// Package planner splits a bound operation into root-level steps: subtrees
// rooted at a storage relation go to the database compiler, everything else
// runs through resolvers.
package planner

import (
	"github.com/jerber/fastgql/internal/language"
	"github.com/jerber/fastgql/internal/selection"
)

type OpKind string

const (
	// Compiled subtrees become one database query each.
	Compiled OpKind = "COMPILED"
	// Resolver roots execute field by field.
	Resolver OpKind = "RESOLVER"
)

// Op is one independently executable root field.
type Op struct {
	Kind OpKind
	Node *selection.Node
}

// ExecutionPlan covers every root field of the operation. Sequential is set
// for mutations, whose root fields must run in document order.
type ExecutionPlan struct {
	Ops        []Op
	Sequential bool
}

// Plan decides per root field. The __typename meta field needs no backend
// at all and rides along as a resolver op.
func Plan(bound *selection.Bound) *ExecutionPlan {
	plan := &ExecutionPlan{
		Sequential: bound.Operation.Operation == language.Mutation,
	}
	for _, n := range bound.Nodes {
		kind := Resolver
		if n.Field != nil && n.Field.Storage != nil && n.Field.Storage.Relation != nil {
			kind = Compiled
		}
		plan.Ops = append(plan.Ops, Op{Kind: kind, Node: n})
	}
	return plan
}
