package fastgql

import (
	"context"
	"errors"
	"net/http"

	"github.com/jerber/fastgql/internal/executor"
	"github.com/jerber/fastgql/internal/introspection"
	"github.com/jerber/fastgql/internal/language"
	"github.com/jerber/fastgql/internal/registry"
	"github.com/jerber/fastgql/internal/schema"
	"github.com/jerber/fastgql/internal/selection"
	"github.com/jerber/fastgql/internal/server"
)

// Config declares a schema. Query and Mutation list the root models; every
// model, union and enum reachable from them is registered transitively.
type Config struct {
	Query    []*Model
	Mutation []*Model

	// DB serves compiled queries. May be nil for resolver-only schemas;
	// compiled fields then fail at execution time.
	DB Database

	// DisableIntrospection drops the __schema and __type meta fields.
	DisableIntrospection bool
}

// Engine is a built, validated schema bound to its executor. Construction is
// the gate: once New returns, every request runs against a complete schema.
type Engine struct {
	sch  *schema.Schema
	exec *executor.Executor
}

// New builds the schema from cfg and wires the executor. All registration
// and validation errors surface here, before the first request.
func New(cfg Config) (*Engine, error) {
	reg := registry.New()
	sch, err := reg.Build(registry.Roots{Query: cfg.Query, Mutation: cfg.Mutation})
	if err != nil {
		return nil, err
	}
	if !cfg.DisableIntrospection {
		sch = introspection.Extend(sch)
	}
	db := cfg.DB
	if db == nil {
		db = noDatabase{}
	}
	exec := executor.New(sch, db, executor.WithTypeNamer(reg.TypeNamer()))
	return &Engine{sch: sch, exec: exec}, nil
}

// Request is one GraphQL request.
type Request struct {
	Query         string
	OperationName string
	Variables     map[string]any
}

// Execute runs a single request. Parse and validation failures return a
// response with a null data member; execution failures keep partial data.
func (e *Engine) Execute(ctx context.Context, req Request) *Response {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		return errorResponse(err)
	}
	bound, err := selection.Bind(e.sch, doc, req.OperationName, req.Variables)
	if err != nil {
		return errorResponse(err)
	}
	return e.exec.Execute(ctx, bound)
}

// Handler returns the HTTP transport for this engine.
func (e *Engine) Handler(opts ...ServerOption) (http.Handler, error) {
	return server.New(e.exec, e.sch, opts...)
}

func errorResponse(err error) *Response {
	ge := GraphQLError{Message: err.Error()}
	var perr *language.Error
	var verr *selection.ValidationError
	switch {
	case errors.As(err, &perr):
		ge.Message = perr.Message
		for _, loc := range perr.Locations {
			ge.Locations = append(ge.Locations, Location{Line: loc.Line, Column: loc.Column})
		}
	case errors.As(err, &verr):
		ge.Message = verr.Message
		if verr.Line > 0 {
			ge.Locations = []Location{{Line: verr.Line, Column: verr.Column}}
		}
	}
	return &Response{Errors: []GraphQLError{ge}}
}

// noDatabase backs engines built without a DB.
type noDatabase struct{}

func (noDatabase) QueryJSON(context.Context, string, []any) ([]byte, error) {
	return nil, errors.New("no database configured")
}
