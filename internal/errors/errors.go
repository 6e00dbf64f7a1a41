// Package errors provides the categorised error type used across the build
// pipeline so the CLI can report each failure class in its own words.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Category classifies where in the pipeline an error originated.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryValidation Category = "validation"
	CategoryFetch      Category = "fetch"
	CategoryGeneration Category = "generation"
	CategoryFileSystem Category = "filesystem"
	CategoryDeployment Category = "deployment"
	CategoryInternal   Category = "internal"
)

// ContextFields carries structured detail such as the HTTP status of a
// failed profile fetch or the stderr of a failed deployment.
type ContextFields map[string]any

// Error is a categorised error with an optional cause and context.
type Error struct {
	Category Category      `json:"category"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds a context field and returns the same error for chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// Field returns a context value, or nil when absent.
func (e *Error) Field(key string) any {
	if e.Context == nil {
		return nil
	}
	return e.Context[key]
}

// New creates an Error without a cause.
func New(category Category, message string) *Error {
	return &Error{Category: category, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that wraps err.
func Wrap(err error, category Category, message string) *Error {
	return &Error{Category: category, Message: message, Cause: err}
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCategory reports whether err (or anything it wraps) is an *Error of the
// given category.
func IsCategory(err error, category Category) bool {
	e, ok := As(err)
	return ok && e.Category == category
}

// GetCategory returns the category of err, or CategoryInternal for errors
// that did not come from this package.
func GetCategory(err error) Category {
	if e, ok := As(err); ok {
		return e.Category
	}
	return CategoryInternal
}
