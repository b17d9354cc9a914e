package executor

import (
	"context"
	"sync"

	"github.com/jerber/fastgql/internal/compiler"
	"github.com/jerber/fastgql/internal/schema"
)

// typenameKey matches the discriminator projection of compiled queries.
const typenameKey = "__typename"

// applySplices fills resolver-backed fields into the raw decoded rows of a
// compiled query. It runs before the decode plan strips discriminator keys,
// so type-conditioned splices can still check the concrete type.
func (e *Executor) applySplices(ctx context.Context, state *executionState, cq *compiler.CompiledQuery, v any, rootPath Path) {
	for _, sp := range cq.Splices {
		e.applySplice(ctx, state, sp, v, rootPath)
	}
}

func (e *Executor) applySplice(ctx context.Context, state *executionState, sp compiler.SplicePoint, v any, rootPath Path) {
	async := sp.Node.Field.Resolve.Kind == schema.ResolveAsync
	var wg sync.WaitGroup

	walkPath(v, sp.Path, rootPath, func(obj map[string]any, objPath Path) {
		if sp.OnType != "" {
			if tn, _ := obj[typenameKey].(string); tn != sp.OnType {
				return
			}
		}
		fieldPath := append(append(Path{}, objPath...), sp.Node.ResponseName())
		resolve := func() {
			val, _ := e.resolveNode(ctx, state, obj, sp.Node, fieldPath)
			state.mu.Lock()
			obj[sp.Node.ResponseName()] = val
			state.mu.Unlock()
		}
		if async {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resolve()
			}()
			return
		}
		resolve()
	})
	wg.Wait()
}

// walkPath visits every object reachable through the given response keys,
// descending into list elements as it goes.
func walkPath(v any, keys []string, path Path, visit func(obj map[string]any, path Path)) {
	switch t := v.(type) {
	case []any:
		for i, item := range t {
			walkPath(item, keys, append(append(Path{}, path...), i), visit)
		}
	case map[string]any:
		if len(keys) == 0 {
			visit(t, path)
			return
		}
		walkPath(t[keys[0]], keys[1:], append(append(Path{}, path...), keys[0]), visit)
	}
}
