package faults

import "errors"

type ErrorCategory string

const (
	ValidationError          ErrorCategory = "ValidationError"
	NotFoundError            ErrorCategory = "NotFoundError"
	ReferenceResolutionError ErrorCategory = "ReferenceResolutionError"
	ConflictError            ErrorCategory = "ConflictError"
	AuthError                ErrorCategory = "AuthError"
	RemoteError              ErrorCategory = "RemoteError"
	TransportError           ErrorCategory = "TransportError"
	InternalError            ErrorCategory = "InternalError"
)

// TypedError is the error shape every package returns upward. StatusCode and
// Body are set only when the failure originated from a remote response.
type TypedError struct {
	Category   ErrorCategory
	Message    string
	Cause      error
	StatusCode int
	Body       any
}

func (e *TypedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Category)
}

func (e *TypedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewTypedError(category ErrorCategory, message string, cause error) *TypedError {
	return &TypedError{
		Category: category,
		Message:  message,
		Cause:    cause,
	}
}

// NewRemoteTypedError builds an error that keeps the remote status code and
// decoded response body verbatim for caller diagnosis.
func NewRemoteTypedError(category ErrorCategory, message string, statusCode int, body any) *TypedError {
	return &TypedError{
		Category:   category,
		Message:    message,
		StatusCode: statusCode,
		Body:       body,
	}
}

// WithCause sets the wrapped cause so errors.Is matches sentinel reasons.
func (e *TypedError) WithCause(cause error) *TypedError {
	e.Cause = cause
	return e
}

func IsCategory(err error, category ErrorCategory) bool {
	if err == nil {
		return false
	}

	var typedErr *TypedError
	if !errors.As(err, &typedErr) {
		return false
	}
	return typedErr.Category == category
}

// CategoryOf returns the category of the first typed error in the chain, or
// InternalError for untyped errors.
func CategoryOf(err error) ErrorCategory {
	var typedErr *TypedError
	if errors.As(err, &typedErr) {
		return typedErr.Category
	}
	return InternalError
}

func StatusCode(err error) int {
	var typedErr *TypedError
	if errors.As(err, &typedErr) {
		return typedErr.StatusCode
	}
	return 0
}

func Body(err error) any {
	var typedErr *TypedError
	if errors.As(err, &typedErr) {
		return typedErr.Body
	}
	return nil
}
