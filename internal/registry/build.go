package registry

import (
	"github.com/jerber/fastgql/internal/schema"
)

// Roots declares the models whose fields are merged into the root operation
// types. Several models may contribute to one root; their field sets must be
// disjoint.
type Roots struct {
	Query    []*Model
	Mutation []*Model
}

// Build registers the root models, merges them into the Query and Mutation
// types, and runs the terminal validation gate. Afterwards the schema is
// complete: every placeholder inserted during cyclic registration has its
// fields, so the checks here see the finished graph.
func (r *Registry) Build(roots Roots) (*schema.Schema, error) {
	if len(roots.Query) == 0 {
		return nil, schemaErrorf("at least one query root model is required")
	}
	queryType, err := r.mergeRoots("Query", roots.Query)
	if err != nil {
		return nil, err
	}
	s := &schema.Schema{
		QueryType:  queryType.Name,
		Types:      r.types,
		Directives: make(map[string]*schema.Directive),
	}
	if len(roots.Mutation) > 0 {
		mutationType, err := r.mergeRoots("Mutation", roots.Mutation)
		if err != nil {
			return nil, err
		}
		s.MutationType = mutationType.Name
	}
	for _, d := range schema.BuiltinDirectives {
		s.Directives[d.Name] = d
	}
	if err := r.inheritInterfaceFields(); err != nil {
		return nil, err
	}
	if err := r.validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Registry) mergeRoots(name string, models []*Model) (*schema.Type, error) {
	root := &schema.Type{Name: name, Kind: schema.TypeKindObject}
	seen := make(map[string]string) // field name -> contributing model
	for _, m := range models {
		t, err := r.Register(m)
		if err != nil {
			return nil, err
		}
		for _, f := range t.Fields {
			if prev, dup := seen[f.Name]; dup {
				return nil, schemaErrorf("root field %q declared by both %s and %s", f.Name, prev, m.Name)
			}
			seen[f.Name] = m.Name
			if f.Resolve.Func == nil && (f.Storage == nil || f.Storage.Relation == nil) {
				return nil, schemaErrorf("root field %s.%s needs a resolver or a relation", m.Name, f.Name)
			}
			root.Fields = append(root.Fields, f)
		}
		// The model's own type stays registered so fragments on it keep
		// working, but clients address its fields through the root.
	}
	r.types[name] = root
	return root, nil
}

// inheritInterfaceFields copies interface fields the member did not declare
// itself. Running after all registration means no member ever inherits from
// a half-built placeholder.
func (r *Registry) inheritInterfaceFields() error {
	for _, t := range r.types {
		if t.Kind != schema.TypeKindObject {
			continue
		}
		for _, ifaceName := range t.Interfaces {
			iface := r.types[ifaceName]
			if iface == nil {
				return schemaErrorf("type %s implements unknown interface %s", t.Name, ifaceName)
			}
			for _, f := range iface.Fields {
				if t.Field(f.Name) == nil {
					t.Fields = append(t.Fields, f)
				}
			}
		}
	}
	return nil
}

func (r *Registry) validate(s *schema.Schema) error {
	for _, t := range s.Types {
		for _, f := range t.Fields {
			named := f.Type.NamedTypeName()
			target, ok := s.Types[named]
			if !ok {
				return schemaErrorf("type %s, field %s references unknown type %s", t.Name, f.Name, named)
			}
			if f.Storage != nil && f.Storage.Relation != nil {
				if target.Storage == nil || target.Storage.Table == "" {
					return schemaErrorf("type %s, field %s: relation target %s has no table", t.Name, f.Name, named)
				}
			}
			for _, a := range f.Arguments {
				at, ok := s.Types[a.Type.NamedTypeName()]
				if !ok {
					return schemaErrorf("type %s, field %s: argument %s references unknown type %s", t.Name, f.Name, a.Name, a.Type.NamedTypeName())
				}
				if at.Kind != schema.TypeKindScalar && at.Kind != schema.TypeKindEnum {
					return schemaErrorf("type %s, field %s: argument %s must be scalar or enum", t.Name, f.Name, a.Name)
				}
			}
		}
		for _, p := range t.PossibleTypes {
			if _, ok := s.Types[p]; !ok {
				return schemaErrorf("type %s lists unknown possible type %s", t.Name, p)
			}
		}
	}
	return nil
}
