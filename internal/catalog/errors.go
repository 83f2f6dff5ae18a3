package catalog

import (
	"fmt"
	"strings"
)

// UnknownOperationError reports a dispatch against a name outside the
// catalog.
type UnknownOperationError struct {
	Name string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q", e.Name)
}

// InvalidArgumentsError reports arguments violating an operation's
// declared parameters, naming the offending field.
type InvalidArgumentsError struct {
	Op     string
	Field  string
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("%s: invalid argument %q: %s", e.Op, e.Field, e.Reason)
}

// PartialFailureError reports a multi-step mutation that destroyed state
// and then failed. The completed steps and the failing one are named so
// the caller knows exactly what was left behind; it is never collapsed
// into an overall success or a plain failure.
type PartialFailureError struct {
	Op         string
	Completed  []string
	FailedStep string
	Err        error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s: step %s failed after %s completed: %v",
		e.Op, e.FailedStep, strings.Join(e.Completed, ", "), e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }
