// Package language is a thin seam over gqlparser. The rest of the module
// imports GraphQL AST types from here so that the parser dependency stays in
// one place.
package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

// Error is the parser's located error type.
type Error = gqlerror.Error

// ParseQuery parses GraphQL query text into a document. Syntax errors come
// back as *Error with line/column positions.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
