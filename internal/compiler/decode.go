package compiler

// DecodePlan describes how the JSON a compiled query produces maps back
// onto the response shape. The SQL already emits response names as object
// keys, so decoding only has to fix up what SQL cannot express: empty
// aggregates, static __typename values and the pruning of branch fields
// that belong to a different concrete type.
type DecodePlan struct {
	// List means the value is a json_agg aggregate; SQL yields null when
	// it is empty.
	List bool

	// TypeName is the static concrete type of every object at this level.
	// Empty when the level is polymorphic.
	TypeName string

	// Polymorphic levels always project the discriminator under the
	// typenameKey, even when the client did not ask for it.
	Polymorphic bool

	// TypenameKeys lists the response keys the client wants filled with
	// the concrete type name.
	TypenameKeys []string

	// BranchOwners maps a response key to the concrete types it belongs
	// to. Keys absent from the map are common to every type.
	BranchOwners map[string]map[string]bool

	// Children holds the plans of nested composite keys.
	Children map[string]*DecodePlan
}

// typenameKey is the reserved projection key for the discriminator column.
const typenameKey = "__typename"

// Apply reshapes a decoded JSON value in place and returns it.
func (p *DecodePlan) Apply(v any) any {
	if p.List {
		items, _ := v.([]any)
		if items == nil {
			return []any{}
		}
		for i, item := range items {
			items[i] = p.applyObject(item)
		}
		return items
	}
	return p.applyObject(v)
}

func (p *DecodePlan) applyObject(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}

	typeName := p.TypeName
	if p.Polymorphic {
		typeName, _ = m[typenameKey].(string)
		delete(m, typenameKey)
		for key, owners := range p.BranchOwners {
			if !owners[typeName] {
				delete(m, key)
			}
		}
	}
	for _, k := range p.TypenameKeys {
		if owners, branched := p.BranchOwners[k]; branched && !owners[typeName] {
			continue
		}
		m[k] = typeName
	}

	for key, child := range p.Children {
		cv, ok := m[key]
		if !ok {
			continue
		}
		if cv == nil {
			if child.List {
				m[key] = []any{}
			}
			continue
		}
		m[key] = child.Apply(cv)
	}
	return m
}
