package events

import "time"

// CompileFailure is emitted when a selection subtree fails to compile. The
// client only sees a generic message; the event carries the real cause.
type CompileFailure struct {
	Field string
	Err   error
}

// DBQueryStart is emitted before a compiled query hits the database.
type DBQueryStart struct {
	SQL       string
	NumParams int
}

// DBQueryFinish is emitted after the database round trip completes.
type DBQueryFinish struct {
	SQL       string
	NumParams int
	Err       error
	Duration  time.Duration
}
