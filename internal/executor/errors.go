package executor

import (
	"fmt"

	"github.com/jerber/fastgql/internal/language"
)

// Path addresses a response position: field response names and list indices.
type Path []any

// Location is a position in the query source.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError is one entry of the response errors list.
type GraphQLError struct {
	Message   string     `json:"message"`
	Locations []Location `json:"locations,omitempty"`
	Path      Path       `json:"path,omitempty"`
}

func (e *GraphQLError) Error() string { return e.Message }

// Response is the execution result. Data stays non-nil on partial failure;
// only requests rejected before execution report a null data member.
type Response struct {
	Data   map[string]any `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// ResolverError wraps a failure or panic inside a user resolver.
type ResolverError struct {
	Field string
	Err   error
}

func (e *ResolverError) Error() string {
	return fmt.Sprintf("resolver for field %q failed: %v", e.Field, e.Err)
}

func (e *ResolverError) Unwrap() error { return e.Err }

func locations(pos *language.Position) []Location {
	if pos == nil {
		return nil
	}
	return []Location{{Line: pos.Line, Column: pos.Column}}
}
