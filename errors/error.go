package errors

import (
	"fmt"
)

// ConfigurationError occurs when a caller-supplied parameter is out of its domain
type ConfigurationError struct {
	Parameter string
	Value     interface{}
	Reason    string
}

// Error returns a textual representation of this ConfigurationError
func (e ConfigurationError) Error() string {
	return fmt.Sprintf("Invalid value %v for %s: %s", e.Value, e.Parameter, e.Reason)
}

// MalformedInputError occurs when an input record cannot be parsed
type MalformedInputError struct {
	Source string // name of the input the record came from
	Line   int    // 1-based line number, or 0 if unknown
	Record string
	Err    error
}

// Error returns a textual representation of this MalformedInputError
func (e MalformedInputError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("Malformed record in %s at line %d: %q", e.Source, e.Line, e.Record)
	}
	return fmt.Sprintf("Malformed record in %s at line %d: %q: %v", e.Source, e.Line, e.Record, e.Err)
}

// Unwrap returns the underlying parse error
func (e MalformedInputError) Unwrap() error {
	return e.Err
}

// EmptyClusterError occurs when a centroid receives no points during an iteration
type EmptyClusterError struct {
	CentroidID int
	Iteration  int
}

// Error returns a textual representation of this EmptyClusterError
func (e EmptyClusterError) Error() string {
	return fmt.Sprintf("Centroid %d received no points in iteration %d", e.CentroidID, e.Iteration)
}

// RuntimeUnavailableError occurs when a runtime primitive cannot run, because the
// runtime has been closed or its context has been cancelled
type RuntimeUnavailableError struct {
	Primitive string
	Err       error
}

// Error returns a textual representation of this RuntimeUnavailableError
func (e RuntimeUnavailableError) Error() string {
	return fmt.Sprintf("Runtime unavailable during %s: %v", e.Primitive, e.Err)
}

// Unwrap returns the cause of this RuntimeUnavailableError
func (e RuntimeUnavailableError) Unwrap() error {
	return e.Err
}
