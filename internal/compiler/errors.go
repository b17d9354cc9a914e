package compiler

import (
	"fmt"
	"strings"
)

// CompileError means a selection that passed validation cannot be expressed
// as a database query. Path points at the offending field.
type CompileError struct {
	Message string
	Path    []string
}

func (e *CompileError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return e.Message + " (at " + strings.Join(e.Path, ".") + ")"
}

func compileErrorf(path []string, format string, args ...any) *CompileError {
	return &CompileError{Message: fmt.Sprintf(format, args...), Path: append([]string(nil), path...)}
}
