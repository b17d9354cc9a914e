// Package compiler turns a bound selection subtree into a single database
// query. Each nesting level becomes a correlated subquery projecting a JSON
// object, so one round trip fetches the whole tree regardless of depth.
package compiler

import (
	"sort"
	"strings"

	"github.com/jerber/fastgql/internal/schema"
	"github.com/jerber/fastgql/internal/selection"
)

// CompiledQuery is one executable statement. Params line up with the $1..$n
// placeholders in SQL; values are never interpolated into the text.
type CompiledQuery struct {
	SQL    string
	Params []any

	Decode *DecodePlan

	// Splices are resolver-backed fields inside the compiled subtree. The
	// query cannot fetch them; the executor fills them in per object after
	// decoding.
	Splices []SplicePoint
}

// SplicePoint locates a field the executor resolves after the database
// round trip. Path addresses the owning objects by response name, starting
// at the compiled root's value. OnType restricts the splice to one concrete
// type when the field came from a type-conditioned fragment.
type SplicePoint struct {
	Path   []string
	OnType string
	Node   *selection.Node
}

// Compile builds the query for a root field backed by a storage relation.
func Compile(sch *schema.Schema, node *selection.Node) (*CompiledQuery, error) {
	if node.Field == nil || node.Field.Storage == nil || node.Field.Storage.Relation == nil {
		return nil, compileErrorf(nil, "field %q has no storage relation", node.Name)
	}
	c := &compiler{sch: sch, params: &paramSet{}}
	sql, plan, err := c.level(node, nil, nil, "")
	if err != nil {
		return nil, err
	}
	if strings.Contains(sql, parentToken) {
		return nil, compileErrorf([]string{node.ResponseName()}, "root relation references $parent")
	}
	return &CompiledQuery{SQL: sql, Params: c.params.values, Decode: plan, Splices: c.splices}, nil
}

type compiler struct {
	sch     *schema.Schema
	params  *paramSet
	splices []SplicePoint
}

// level compiles one relation hop: the node's target objects, their scalar
// columns, and a correlated subquery per nested relation.
func (c *compiler) level(node *selection.Node, tablePath, respPath []string, parentAlias string) (string, *DecodePlan, error) {
	rel := node.Field.Storage.Relation
	target := node.Type
	if target == nil || target.Storage == nil || target.Storage.Table == "" {
		return "", nil, compileErrorf(respPath, "type behind field %q has no table", node.Name)
	}

	tablePath = append(tablePath, target.Storage.Table)
	alias := tableAlias(tablePath)
	qb := &sqlBuilder{
		table:  target.Storage.Table,
		alias:  alias,
		many:   rel.Cardinality == schema.Many,
		params: c.params,
	}

	if err := c.applyArgs(qb, node, rel, respPath); err != nil {
		return "", nil, err
	}

	plan := &DecodePlan{List: qb.many}
	polymorphic := target.Kind != schema.TypeKindObject
	if polymorphic {
		if target.Storage.Discriminator == "" {
			return "", nil, compileErrorf(respPath, "type %s has no discriminator column", target.Name)
		}
		plan.Polymorphic = true
		qb.addField(typenameKey, alias+"."+target.Storage.Discriminator)
	} else {
		plan.TypeName = target.Name
	}

	common := make(map[string]bool, len(node.Children))
	for _, child := range node.Children {
		common[child.ResponseName()] = true
		if err := c.field(qb, plan, child, "", tablePath, respPath, alias); err != nil {
			return "", nil, err
		}
	}

	if len(node.Branches) > 0 && !polymorphic {
		return "", nil, compileErrorf(respPath, "type %s is concrete but has branch selections", target.Name)
	}
	if err := c.branches(qb, plan, node, tablePath, respPath, alias, target.Storage.Discriminator, common); err != nil {
		return "", nil, err
	}

	if len(qb.fields) == 0 {
		return "", nil, compileErrorf(respPath, "nothing to select for field %q", node.Name)
	}
	return qb.sql(rel.FromWhere, parentAlias), plan, nil
}

// field emits one selected field at the current level. onType is set when
// the field belongs to a type-conditioned branch.
func (c *compiler) field(qb *sqlBuilder, plan *DecodePlan, child *selection.Node, onType string, tablePath, respPath []string, alias string) error {
	key := child.ResponseName()

	if child.Name == "__typename" {
		plan.TypenameKeys = append(plan.TypenameKeys, key)
		return nil
	}

	storage := child.Field.Storage
	switch {
	case storage != nil && storage.Column != "":
		expr := currentToken + "." + storage.Column
		if onType == "" {
			qb.addField(key, expr)
		} else {
			qb.addBranchField(key, onType, expr)
		}

	case storage != nil && storage.Relation != nil:
		if _, dup := plan.Children[key]; dup {
			return compileErrorf(append(respPath, key), "field %q selected through multiple type conditions", key)
		}
		sub, subPlan, err := c.level(child, tablePath, append(respPath, key), alias)
		if err != nil {
			return err
		}
		if onType == "" {
			qb.addField(key, "("+sub+")")
		} else {
			qb.addBranchField(key, onType, "("+sub+")")
		}
		if plan.Children == nil {
			plan.Children = make(map[string]*DecodePlan)
		}
		plan.Children[key] = subPlan

	default:
		// Resolver-backed or unmapped: fetched after the round trip.
		c.splices = append(c.splices, SplicePoint{
			Path:   append([]string(nil), respPath...),
			OnType: onType,
			Node:   child,
		})
	}
	return nil
}

func (c *compiler) branches(qb *sqlBuilder, plan *DecodePlan, node *selection.Node, tablePath, respPath []string, alias, discriminator string, common map[string]bool) error {
	if len(node.Branches) == 0 {
		return nil
	}
	qb.discriminator = alias + "." + discriminator

	members := make([]string, 0, len(node.Branches))
	for name := range node.Branches {
		members = append(members, name)
	}
	sort.Strings(members)

	for _, member := range members {
		for _, bnode := range node.Branches[member] {
			key := bnode.ResponseName()
			if common[key] {
				// Already projected for every row by the common
				// selection; re-adding it as a branch arm would mark it
				// type-owned and decode would strip it elsewhere.
				if bnode.Field != nil && bnode.Field.Storage != nil && bnode.Field.Storage.Relation != nil {
					return compileErrorf(append(respPath, key), "field %q selected through multiple type conditions", key)
				}
				continue
			}
			if err := c.field(qb, plan, bnode, member, tablePath, respPath, alias); err != nil {
				return err
			}
			if plan.BranchOwners == nil {
				plan.BranchOwners = make(map[string]map[string]bool)
			}
			if plan.BranchOwners[key] == nil {
				plan.BranchOwners[key] = make(map[string]bool)
			}
			plan.BranchOwners[key][member] = true
		}
	}
	qb.flushBranchFields()
	return nil
}

// applyArgs binds the client's arguments into SQL clauses according to the
// relation's argument specs, then lets the update hook adjust the result.
func (c *compiler) applyArgs(qb *sqlBuilder, node *selection.Node, rel *schema.RelationMapping, respPath []string) error {
	names := make([]string, 0, len(node.Args))
	for name := range node.Args {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		val := node.Args[name]
		spec, ok := rel.Args[name]
		if !ok {
			if rel.Update == nil {
				return compileErrorf(respPath, "argument %q has no database mapping", name)
			}
			continue
		}
		if val == nil {
			continue
		}
		switch spec.Kind {
		case schema.ArgLimit:
			n, ok := val.(int)
			if !ok {
				return compileErrorf(respPath, "argument %q must be an Int", name)
			}
			qb.SetLimit(n)
		case schema.ArgOffset:
			n, ok := val.(int)
			if !ok {
				return compileErrorf(respPath, "argument %q must be an Int", name)
			}
			qb.SetOffset(n)
		case schema.ArgWhere:
			qb.AndWhere(spec.Expression, val)
		case schema.ArgOrderBy:
			qb.SetOrderBy(spec.Expression)
		default:
			return compileErrorf(respPath, "argument %q has unknown mapping kind", name)
		}
	}
	if rel.Update != nil {
		if err := rel.Update(qb, node.Args); err != nil {
			return compileErrorf(respPath, "relation update hook: %v", err)
		}
	}
	return nil
}
