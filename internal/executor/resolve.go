package executor

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/iancoleman/strcase"

	"github.com/jerber/fastgql/internal/schema"
	"github.com/jerber/fastgql/internal/selection"
)

// resolveNode produces the response value for one field on one source. The
// second return is false when a non-null constraint broke below and the
// parent object must collapse to null.
func (e *Executor) resolveNode(ctx context.Context, state *executionState, source any, node *selection.Node, path Path) (any, bool) {
	if err := ctx.Err(); err != nil {
		state.addError(err.Error(), path, node.Position)
		return nil, !node.Field.Type.IsNonNull()
	}

	var value any
	var err error
	switch node.Field.Resolve.Kind {
	case schema.ResolveAttribute:
		value = attributeValue(source, node)
	default:
		value, err = e.callResolver(ctx, node, source)
	}
	if err != nil {
		state.addError(err.Error(), path, node.Position)
		return nil, !node.Field.Type.IsNonNull()
	}
	return e.completeValue(ctx, state, node.Field.Type, node, value, path)
}

// callResolver invokes the user resolver, converting panics into errors so
// one misbehaving field cannot take down the request.
func (e *Executor) callResolver(ctx context.Context, node *selection.Node, source any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ResolverError{Field: node.Name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	value, err = node.Field.Resolve.Func(ctx, source, node.Args)
	if err != nil {
		err = &ResolverError{Field: node.Name, Err: err}
	}
	return value, err
}

func (e *Executor) completeValue(ctx context.Context, state *executionState, ref *schema.TypeRef, node *selection.Node, value any, path Path) (any, bool) {
	if ref.IsNonNull() {
		v, ok := e.completeValue(ctx, state, ref.Unwrap(), node, value, path)
		if !ok {
			// A failure below is already reported; the null keeps
			// propagating without a second error here.
			return nil, false
		}
		if v == nil {
			state.addError(fmt.Sprintf("cannot return null for non-nullable field %s", node.Name), path, node.Position)
			return nil, false
		}
		return v, true
	}
	v, ok := e.completeNullable(ctx, state, ref, node, value, path)
	if !ok {
		// This position is nullable, so it absorbs the propagated null.
		return nil, true
	}
	return v, true
}

func (e *Executor) completeNullable(ctx context.Context, state *executionState, ref *schema.TypeRef, node *selection.Node, value any, path Path) (any, bool) {
	if value == nil {
		return nil, true
	}
	if ref.IsList() {
		return e.completeList(ctx, state, ref.Unwrap(), node, value, path)
	}
	if node.Type == nil {
		// Leaf: scalars and enums serialize as-is.
		return value, true
	}
	return e.completeObject(ctx, state, node, value, path)
}

// completeList completes each item; a broken non-null item poisons the
// whole list, which then nulls out at its nearest nullable position.
// Nullable item failures were already absorbed into null slots.
func (e *Executor) completeList(ctx context.Context, state *executionState, itemRef *schema.TypeRef, node *selection.Node, value any, path Path) (any, bool) {
	items, ok := toSlice(value)
	if !ok {
		state.addError(fmt.Sprintf("field %s expected a list, got %T", node.Name, value), path, node.Position)
		return nil, false
	}
	out := make([]any, len(items))
	for i, item := range items {
		itemPath := append(append(Path{}, path...), i)
		v, itemOK := e.completeValue(ctx, state, itemRef, node, item, itemPath)
		if !itemOK {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func (e *Executor) completeObject(ctx context.Context, state *executionState, node *selection.Node, value any, path Path) (any, bool) {
	typeName := node.Type.Name
	if node.Type.Kind != schema.TypeKindObject {
		typeName = e.typeName(value)
		if typeName == "" {
			state.addError(fmt.Sprintf("cannot determine concrete type of %s value", node.Type.Name), path, node.Position)
			return nil, false
		}
		if !node.Type.HasPossibleType(typeName) {
			state.addError(fmt.Sprintf("type %s is not a possible type of %s", typeName, node.Type.Name), path, node.Position)
			return nil, false
		}
	}

	children := node.Children
	if branch := node.Branches[typeName]; len(branch) > 0 {
		children = append(append([]*selection.Node{}, children...), branch...)
	}

	m := make(map[string]any, len(children))
	ok := true

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, child := range children {
		key := child.ResponseName()
		if child.Name == "__typename" {
			// Async siblings may already be writing the map.
			mu.Lock()
			m[key] = typeName
			mu.Unlock()
			continue
		}
		childPath := append(append(Path{}, path...), key)
		if child.Field.Resolve.Kind == schema.ResolveAsync {
			wg.Add(1)
			go func(child *selection.Node, key string, childPath Path) {
				defer wg.Done()
				v, childOK := e.resolveNode(ctx, state, value, child, childPath)
				mu.Lock()
				m[key] = v
				ok = ok && childOK
				mu.Unlock()
			}(child, key, childPath)
			continue
		}
		v, childOK := e.resolveNode(ctx, state, value, child, childPath)
		mu.Lock()
		m[key] = v
		ok = ok && childOK
		mu.Unlock()
	}
	wg.Wait()

	if !ok {
		// A non-null child broke; the object itself becomes the
		// propagating null.
		return nil, false
	}
	return m, true
}

// attributeValue reads a plain attribute off the source value: map keys
// first, then exported struct fields matching the attribute name.
func attributeValue(source any, node *selection.Node) any {
	if source == nil {
		return nil
	}
	attr := node.Field.Resolve.Attribute
	if m, ok := source.(map[string]any); ok {
		if v, ok := m[node.ResponseName()]; ok {
			return v
		}
		if v, ok := m[node.Name]; ok {
			return v
		}
		return m[attr]
	}
	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	f := rv.FieldByName(strcase.ToCamel(attr))
	if !f.IsValid() || !f.CanInterface() {
		return nil
	}
	return f.Interface()
}

func toSlice(value any) ([]any, bool) {
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
