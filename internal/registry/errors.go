package registry

import "fmt"

// SchemaError reports a malformed or ambiguous model graph. It is a
// startup-time error: callers are expected to abort rather than serve a
// schema that failed to build.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string { return "schema error: " + e.Message }

func schemaErrorf(format string, args ...any) error {
	return &SchemaError{Message: fmt.Sprintf(format, args...)}
}
