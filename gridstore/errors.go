package gridstore

import "fmt"

// ValidationError indicates malformed input to a mutation, such as editing
// a cell on a field that does not exist. It is returned synchronously,
// before any store mutation, so the store is left untouched.
type ValidationError struct {
	Op     string
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// NotFoundError indicates a referenced sheet, record or field does not
// exist at the remote at call time.
type NotFoundError struct {
	Kind string // "sheet", "record", "field"
	ID   string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// RemoteError wraps a network, transport or server failure reported by the
// remote boundary during a mutation. For create and edit paths it is
// surfaced after the optimistic apply has been rolled back.
type RemoteError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

// Unwrap allows error unwrapping
func (e *RemoteError) Unwrap() error {
	return e.Err
}

func validationErr(op, format string, args ...any) error {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
