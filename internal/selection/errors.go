package selection

import (
	"fmt"

	"github.com/jerber/fastgql/internal/language"
)

// ValidationError reports a query that does not fit the schema. The request
// is rejected before anything executes, so it carries no partial data.
type ValidationError struct {
	Message string
	Line    int
	Column  int
}

func (e *ValidationError) Error() string { return e.Message }

func errorf(pos *language.Position, format string, args ...any) *ValidationError {
	e := &ValidationError{Message: fmt.Sprintf(format, args...)}
	if pos != nil {
		e.Line = pos.Line
		e.Column = pos.Column
	}
	return e
}
