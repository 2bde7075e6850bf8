package helper

import "fmt"

// Error carries the operation that failed together with the underlying error.
type Error struct {
	Operation string
	Original  error
}

// NewError wraps err with the operation it occurred in.
// A nil err yields nil so call sites can wrap unconditionally.
func NewError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Operation: operation, Original: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Original)
}

func (e *Error) Unwrap() error {
	return e.Original
}
