package fastgql

import (
	"context"

	"github.com/jerber/fastgql/internal/eventbus"
	"github.com/jerber/fastgql/internal/executor"
	"github.com/jerber/fastgql/internal/otel"
	"github.com/jerber/fastgql/internal/registry"
	"github.com/jerber/fastgql/internal/schema"
	"github.com/jerber/fastgql/internal/server"
)

// Model definition vocabulary, re-exported so callers never import internal
// packages.
type (
	Model    = registry.Model
	Field    = registry.Field
	Resolver = registry.Resolver
	Arg      = registry.Arg
	Relation = registry.Relation
	Union    = registry.Union
	Enum     = registry.Enum
	TypeExpr = registry.TypeExpr

	ResolverFunc = schema.ResolverFunc
	ArgSpec      = schema.ArgSpec
	ArgKind      = schema.ArgKind
	Clauses      = schema.Clauses

	Database     = executor.Database
	Response     = executor.Response
	GraphQLError = executor.GraphQLError
	Location     = executor.Location
	Path         = executor.Path
)

const (
	ArgLimit   = schema.ArgLimit
	ArgOffset  = schema.ArgOffset
	ArgWhere   = schema.ArgWhere
	ArgOrderBy = schema.ArgOrderBy
)

var (
	Scalar   = registry.Scalar
	Object   = registry.Object
	OfUnion  = registry.OfUnion
	OfEnum   = registry.OfEnum
	List     = registry.List
	Optional = registry.Optional
)

// ServerOption configures the HTTP handler returned by Engine.Handler.
type ServerOption = server.Option

var (
	WithTimeout      = server.WithTimeout
	WithPretty       = server.WithPretty
	WithMaxBodyBytes = server.WithMaxBodyBytes
	WithCORS         = server.WithCORS
	WithGraphiQL     = server.WithGraphiQL
)

// Telemetry installs the in-process event bus and, when endpoint is
// non-empty, an OTLP trace exporter. Returns a shutdown function that
// flushes pending spans.
func Telemetry(endpoint, service string) (func(context.Context) error, error) {
	eventbus.Use(eventbus.New())
	return otel.Setup(endpoint, service)
}
