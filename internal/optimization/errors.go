package optimization

import "fmt"

// ErrInsufficientStops is returned when a run is requested with fewer than
// two stops. It is raised before any population work begins.
var ErrInsufficientStops = NewError("at least 2 stops are required for optimization")

// Error is an optimization error carrying operation and component context.
type Error struct {
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	switch {
	case e.Component != "" && e.Op != "":
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	case e.Component != "":
		prefix = e.Component
	case e.Op != "":
		prefix = e.Op
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// NewError creates a new optimization error with the given message.
func NewError(message string) *Error {
	return &Error{Message: message}
}

// NewErrorf creates a new optimization error with a formatted message.
func NewErrorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps an existing error with additional context.
// If err is nil, WrapError returns nil.
func WrapError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Message: message, Err: err}
}

// WrapErrorf wraps an existing error with additional formatted context.
// If err is nil, WrapErrorf returns nil.
func WrapErrorf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Message: fmt.Sprintf(format, args...), Err: err}
}
