package selection

import (
	"github.com/jerber/fastgql/internal/language"
	"github.com/jerber/fastgql/internal/schema"
)

// Bind validates a query document against the schema and returns the
// normalized selection tree for one operation. Binding fails atomically:
// any schema mismatch rejects the whole request.
func Bind(sch *schema.Schema, doc *language.QueryDocument, operationName string, variables map[string]any) (*Bound, error) {
	op, err := pickOperation(doc, operationName)
	if err != nil {
		return nil, err
	}

	var rootType *schema.Type
	switch op.Operation {
	case language.Query:
		rootType = sch.GetQueryType()
	case language.Mutation:
		rootType = sch.GetMutationType()
		if rootType == nil {
			return nil, errorf(op.Position, "schema does not support mutations")
		}
	default:
		return nil, errorf(op.Position, "unsupported operation type %q", op.Operation)
	}

	coerced, err := coerceVariableValues(op, variables)
	if err != nil {
		return nil, err
	}

	b := &binder{sch: sch, doc: doc, variables: coerced}
	nodes, branches, err := b.bind(rootType, op.SelectionSet)
	if err != nil {
		return nil, err
	}
	if len(branches) > 0 {
		return nil, errorf(op.Position, "type conditions are not allowed on the root selection")
	}
	if len(nodes) == 0 {
		return nil, errorf(op.Position, "operation has an empty selection set")
	}
	return &Bound{Operation: op, RootType: rootType, Nodes: nodes, Variables: coerced}, nil
}

func pickOperation(doc *language.QueryDocument, name string) (*language.OperationDefinition, error) {
	if name == "" {
		if len(doc.Operations) != 1 {
			return nil, &ValidationError{Message: "operationName is required when the document defines multiple operations"}
		}
		return doc.Operations[0], nil
	}
	if op := doc.Operations.ForName(name); op != nil {
		return op, nil
	}
	return nil, &ValidationError{Message: "operation " + name + " not found in document"}
}

type binder struct {
	sch       *schema.Schema
	doc       *language.QueryDocument
	variables map[string]any
}

// fieldGroup gathers the AST fields that share one response name so that
// duplicate selections merge instead of duplicating work.
type fieldGroup struct {
	responseName string
	fields       []*language.Field
}

type groupMap struct {
	groups []*fieldGroup
	index  map[string]int
}

func (gm *groupMap) add(responseName string, f *language.Field) {
	if gm.index == nil {
		gm.index = make(map[string]int)
	}
	if i, ok := gm.index[responseName]; ok {
		gm.groups[i].fields = append(gm.groups[i].fields, f)
		return
	}
	gm.index[responseName] = len(gm.groups)
	gm.groups = append(gm.groups, &fieldGroup{responseName: responseName, fields: []*language.Field{f}})
}

// bind normalizes one selection set against a composite type. Selections
// that apply to every concrete type come back as nodes; type-conditioned
// selections on an interface or union come back keyed by member name.
func (b *binder) bind(parent *schema.Type, selSet language.SelectionSet) ([]*Node, map[string][]*Node, error) {
	common := &groupMap{}
	branchSets := make(map[string]language.SelectionSet)
	var branchOrder []string

	if err := b.collect(parent, selSet, common, branchSets, &branchOrder, make(map[string]bool)); err != nil {
		return nil, nil, err
	}

	var nodes []*Node
	for _, g := range common.groups {
		n, err := b.buildNode(parent, g)
		if err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}

	var branches map[string][]*Node
	for _, name := range branchOrder {
		member := b.sch.Types[name]
		memberNodes, memberBranches, err := b.bind(member, branchSets[name])
		if err != nil {
			return nil, nil, err
		}
		if len(memberBranches) > 0 {
			return nil, nil, &ValidationError{Message: "nested type condition on concrete type " + name}
		}
		if branches == nil {
			branches = make(map[string][]*Node)
		}
		branches[name] = memberNodes
	}
	return nodes, branches, nil
}

func (b *binder) collect(
	parent *schema.Type,
	selSet language.SelectionSet,
	common *groupMap,
	branchSets map[string]language.SelectionSet,
	branchOrder *[]string,
	visitedFragments map[string]bool,
) error {
	for _, sel := range selSet {
		switch s := sel.(type) {
		case *language.Field:
			include, err := b.shouldInclude(s.Directives)
			if err != nil {
				return err
			}
			if !include {
				continue
			}
			responseName := s.Alias
			if responseName == "" {
				responseName = s.Name
			}
			common.add(responseName, s)

		case *language.InlineFragment:
			include, err := b.shouldInclude(s.Directives)
			if err != nil {
				return err
			}
			if !include {
				continue
			}
			if err := b.collectFragment(parent, s.TypeCondition, s.SelectionSet, s.Position, common, branchSets, branchOrder, visitedFragments); err != nil {
				return err
			}

		case *language.FragmentSpread:
			include, err := b.shouldInclude(s.Directives)
			if err != nil {
				return err
			}
			if !include {
				continue
			}
			if visitedFragments[s.Name] {
				continue
			}
			visitedFragments[s.Name] = true
			def := b.doc.Fragments.ForName(s.Name)
			if def == nil {
				return errorf(s.Position, "unknown fragment %q", s.Name)
			}
			if err := b.collectFragment(parent, def.TypeCondition, def.SelectionSet, def.Position, common, branchSets, branchOrder, visitedFragments); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *binder) collectFragment(
	parent *schema.Type,
	condition string,
	selSet language.SelectionSet,
	pos *language.Position,
	common *groupMap,
	branchSets map[string]language.SelectionSet,
	branchOrder *[]string,
	visitedFragments map[string]bool,
) error {
	if condition == "" || condition == parent.Name || implementsInterface(parent, condition) {
		return b.collect(parent, selSet, common, branchSets, branchOrder, visitedFragments)
	}
	if parent.HasPossibleType(condition) {
		if _, ok := branchSets[condition]; !ok {
			*branchOrder = append(*branchOrder, condition)
		}
		branchSets[condition] = append(branchSets[condition], selSet...)
		return nil
	}
	return errorf(pos, "fragment on %s can never apply to %s", condition, parent.Name)
}

func implementsInterface(t *schema.Type, name string) bool {
	for _, i := range t.Interfaces {
		if i == name {
			return true
		}
	}
	return false
}

func (b *binder) buildNode(parent *schema.Type, g *fieldGroup) (*Node, error) {
	first := g.fields[0]

	if first.Name == "__typename" {
		return &Node{Name: "__typename", Alias: first.Alias, Position: first.Position}, nil
	}

	def := parent.Field(first.Name)
	if def == nil {
		return nil, errorf(first.Position, "field %q is not defined on type %s", first.Name, parent.Name)
	}
	for _, f := range g.fields[1:] {
		if f.Name != first.Name {
			return nil, errorf(f.Position, "fields %q and %q conflict under response name %q", first.Name, f.Name, g.responseName)
		}
	}

	args, err := b.coerceArguments(def, first)
	if err != nil {
		return nil, err
	}

	n := &Node{
		Name:     first.Name,
		Alias:    first.Alias,
		Field:    def,
		Args:     args,
		Position: first.Position,
	}

	named := b.sch.Types[def.Type.NamedTypeName()]
	switch {
	case named == nil:
		return nil, errorf(first.Position, "field %q has unknown type %s", first.Name, def.Type.NamedTypeName())
	case named.Kind == schema.TypeKindScalar || named.Kind == schema.TypeKindEnum:
		if len(first.SelectionSet) > 0 {
			return nil, errorf(first.Position, "field %q of type %s must not have a selection set", first.Name, named.Name)
		}
		return n, nil
	}

	var merged language.SelectionSet
	for _, f := range g.fields {
		merged = append(merged, f.SelectionSet...)
	}
	if len(merged) == 0 {
		return nil, errorf(first.Position, "field %q of type %s must have a selection set", first.Name, named.Name)
	}
	n.Type = named
	n.Children, n.Branches, err = b.bind(named, merged)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (b *binder) coerceArguments(def *schema.Field, f *language.Field) (map[string]any, error) {
	args := make(map[string]any)
	for _, arg := range f.Arguments {
		argDef := def.Argument(arg.Name)
		if argDef == nil {
			return nil, errorf(arg.Position, "unknown argument %q on field %q", arg.Name, f.Name)
		}
		val := valueFromAST(arg.Value, b.variables)
		cv, err := coerceValue(val, argDef.Type)
		if err != nil {
			return nil, errorf(arg.Position, "argument %q on field %q: %v", arg.Name, f.Name, err)
		}
		args[argDef.ModelName] = cv
	}
	for _, argDef := range def.Arguments {
		if _, ok := args[argDef.ModelName]; ok {
			continue
		}
		if argDef.HasDefault {
			args[argDef.ModelName] = argDef.DefaultValue
		} else if argDef.Type.IsNonNull() {
			return nil, errorf(f.Position, "argument %q on field %q is required", argDef.Name, f.Name)
		}
	}
	return args, nil
}

func (b *binder) shouldInclude(directives language.DirectiveList) (bool, error) {
	if skip := directives.ForName("skip"); skip != nil {
		v, err := b.directiveBool(skip)
		if err != nil {
			return false, err
		}
		if v {
			return false, nil
		}
	}
	if include := directives.ForName("include"); include != nil {
		v, err := b.directiveBool(include)
		if err != nil {
			return false, err
		}
		if !v {
			return false, nil
		}
	}
	return true, nil
}

func (b *binder) directiveBool(d *language.Directive) (bool, error) {
	for _, arg := range d.Arguments {
		if arg.Name == "if" {
			v, ok := valueFromAST(arg.Value, b.variables).(bool)
			if !ok {
				return false, errorf(d.Position, "@%s requires a Boolean if argument", d.Name)
			}
			return v, nil
		}
	}
	return false, errorf(d.Position, "@%s requires an if argument", d.Name)
}
