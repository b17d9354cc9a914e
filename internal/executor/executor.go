// Package executor runs execution plans: compiled ops go to the database in
// a single round trip each, resolver ops walk the selection tree field by
// field. Failures stay local to their subtree; the rest of the response
// still completes.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jerber/fastgql/internal/compiler"
	"github.com/jerber/fastgql/internal/eventbus"
	"github.com/jerber/fastgql/internal/events"
	"github.com/jerber/fastgql/internal/language"
	"github.com/jerber/fastgql/internal/planner"
	"github.com/jerber/fastgql/internal/schema"
	"github.com/jerber/fastgql/internal/selection"
)

// Database executes one compiled statement and returns the single JSON
// value it projects. Implementations must never interpolate params into the
// statement text.
type Database interface {
	QueryJSON(ctx context.Context, sql string, params []any) ([]byte, error)
}

type Executor struct {
	sch      *schema.Schema
	db       Database
	typeName func(any) string
}

type Option func(*Executor)

// WithTypeNamer sets the function that finds the concrete type name of an
// interface or union value produced by a resolver.
func WithTypeNamer(fn func(any) string) Option {
	return func(e *Executor) { e.typeName = fn }
}

func New(sch *schema.Schema, db Database, opts ...Option) *Executor {
	e := &Executor{sch: sch, db: db, typeName: func(any) string { return "" }}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// executionState collects errors across concurrently executing subtrees.
type executionState struct {
	mu     sync.Mutex
	errors []GraphQLError
}

func (s *executionState) addError(msg string, path Path, pos *language.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, GraphQLError{
		Message:   msg,
		Locations: locations(pos),
		Path:      append(Path(nil), path...),
	})
}

// Execute runs a bound operation. Query root fields run concurrently,
// mutation root fields in document order.
func (e *Executor) Execute(ctx context.Context, bound *selection.Bound) *Response {
	plan := planner.Plan(bound)
	state := &executionState{}
	data := make(map[string]any, len(plan.Ops))

	run := func(op planner.Op) (string, any) {
		node := op.Node
		key := node.ResponseName()
		switch {
		case node.Field == nil:
			return key, bound.RootType.Name
		case op.Kind == planner.Compiled:
			return key, e.runCompiled(ctx, state, node)
		default:
			v, _ := e.resolveNode(ctx, state, nil, node, Path{key})
			return key, v
		}
	}

	if plan.Sequential {
		for _, op := range plan.Ops {
			key, v := run(op)
			data[key] = v
		}
	} else {
		var wg sync.WaitGroup
		var dataMu sync.Mutex
		for _, op := range plan.Ops {
			wg.Add(1)
			go func(op planner.Op) {
				defer wg.Done()
				key, v := run(op)
				dataMu.Lock()
				data[key] = v
				dataMu.Unlock()
			}(op)
		}
		wg.Wait()
	}

	return &Response{Data: data, Errors: state.errors}
}

// runCompiled compiles the subtree, runs it as one statement and reshapes
// the returned JSON. Splices resolve before decoding so they can still see
// the projected discriminator values.
func (e *Executor) runCompiled(ctx context.Context, state *executionState, node *selection.Node) any {
	path := Path{node.ResponseName()}

	cq, err := compiler.Compile(e.sch, node)
	if err != nil {
		// Compile failures are an internal class: the details go to the
		// bus, the client gets a generic message.
		var cerr *compiler.CompileError
		if errors.As(err, &cerr) {
			eventbus.Publish(ctx, events.CompileFailure{Field: node.ResponseName(), Err: err})
			state.addError("internal error: query compilation failed", path, node.Position)
		} else {
			state.addError(err.Error(), path, node.Position)
		}
		return nil
	}

	start := time.Now()
	eventbus.Publish(ctx, events.DBQueryStart{SQL: cq.SQL, NumParams: len(cq.Params)})
	raw, err := e.db.QueryJSON(ctx, cq.SQL, cq.Params)
	eventbus.Publish(ctx, events.DBQueryFinish{
		SQL:       cq.SQL,
		NumParams: len(cq.Params),
		Err:       err,
		Duration:  time.Since(start),
	})
	if err != nil {
		state.addError("database query failed: "+err.Error(), path, node.Position)
		return nil
	}

	var v any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			state.addError("database returned malformed JSON: "+err.Error(), path, node.Position)
			return nil
		}
	}

	e.applySplices(ctx, state, cq, v, path)
	return cq.Decode.Apply(v)
}
