package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryHydration Category = "hydration"
	CategoryDecode    Category = "decode"
	CategoryChannel   Category = "channel"
	CategoryTimeout   Category = "timeout"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// SyncError is a structured error with a stable code, used at the
// operator-facing boundaries (CLI, server startup, channel setup).
// Island-level hydration failures stay plain errors inside auth state;
// they are data there, not control flow.
type SyncError struct {
	// Code is a unique error identifier (e.g., "A001").
	Code string

	// Category is the error type (hydration, channel, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *SyncError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *SyncError) WithSuggestion(s string) *SyncError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *SyncError) WithDetail(d string) *SyncError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *SyncError) Wrap(err error) *SyncError {
	e.Wrapped = err
	return e
}

// New creates a SyncError from a registered error code.
func New(code string) *SyncError {
	template, ok := registry[code]
	if !ok {
		return &SyncError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &SyncError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new SyncError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *SyncError {
	return &SyncError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a SyncError.
func FromError(err error, code string) *SyncError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*SyncError); ok {
		return se
	}
	return New(code).Wrap(err)
}
