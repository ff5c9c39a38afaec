package reactive

import (
	"errors"
	"fmt"
)

// ErrCycle is raised when a computed value is read while it is being
// evaluated, directly or through other computed values.
var ErrCycle = errors.New("reactive: cycle detected in computation")

// ErrComputedSet is raised when a computed value without a setter is
// assigned, or when its setter assigns the computed value again.
var ErrComputedSet = errors.New("reactive: cannot assign computed value")

// ErrReactionLoop is reported when pending reactions keep re-scheduling each
// other and do not settle within Config.MaxReactionIterations passes.
var ErrReactionLoop = errors.New("reactive: reactions did not converge")

// ErrUnbalancedBatch is raised when EndBatch is called without a matching
// StartBatch.
var ErrUnbalancedBatch = errors.New("reactive: EndBatch without StartBatch")

// InvariantError reports a structural violation of the dependency graph.
// It is always raised with panic: once an invariant is broken the graph can
// no longer be trusted.
type InvariantError struct {
	// Op names the operation that detected the violation.
	Op string

	// Subject is the debug name of the observable or derivation involved.
	Subject string

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *InvariantError) Unwrap() error {
	return e.Err
}

// die raises an InvariantError.
func die(op, subject string, err error) {
	panic(&InvariantError{Op: op, Subject: subject, Err: err})
}

// PanicError wraps a recovered panic value that was not an error.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("reactive: panic: %v", e.Value)
}

// asError converts a recovered panic value into an error.
func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r}
}
