package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a folio error code.
type ErrorCode string

const (
	ErrAmbiguousAddressing ErrorCode = "AMBIGUOUS_ADDRESSING" // 400
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrUnauthorized        ErrorCode = "UNAUTHORIZED"         // 401
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrSlugAlreadyExists   ErrorCode = "SLUG_ALREADY_EXISTS"  // 409
	ErrInternal            ErrorCode = "INTERNAL"             // 500
	ErrSourceUnavailable   ErrorCode = "SOURCE_UNAVAILABLE"   // 502
)

// FolioError represents a structured error with code, status, and details.
type FolioError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Cause is the underlying error, if any. It is never shown to clients.
	Cause error
}

// Error implements the error interface.
func (e *FolioError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *FolioError) Unwrap() error {
	return e.Cause
}

// NewAmbiguousAddressing creates a 400 error for when both ID and slug are provided.
func NewAmbiguousAddressing() *FolioError {
	return &FolioError{
		Code:    ErrAmbiguousAddressing,
		Status:  400,
		Message: "cannot specify both id and slug; use one addressing mode",
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *FolioError {
	return &FolioError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnauthorized creates a 401 error for admin requests without a valid token.
func NewUnauthorized() *FolioError {
	return &FolioError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: "admin token required",
	}
}

// NewNotFound creates a 404 error for a lookup miss.
// kind names what was looked up ("article", "category", "file").
func NewNotFound(kind, identifier string) *FolioError {
	return &FolioError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewSlugAlreadyExists creates a 409 error for slug collisions.
func NewSlugAlreadyExists(slug string) *FolioError {
	return &FolioError{
		Code:    ErrSlugAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("article with slug %q already exists", slug),
		Details: map[string]any{"slug": slug},
	}
}

// NewSourceUnavailable creates a 502 error when a required content resource
// (index, categories, tags) cannot be loaded.
func NewSourceUnavailable(resource string, err error) *FolioError {
	msg := fmt.Sprintf("content source unavailable: %s", resource)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &FolioError{
		Code:    ErrSourceUnavailable,
		Status:  502,
		Message: msg,
		Details: map[string]any{"resource": resource},
		Cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *FolioError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &FolioError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Cause:   err,
	}
}

// Is checks if err is, or wraps, a FolioError with the given code.
func Is(err error, code ErrorCode) bool {
	var fErr *FolioError
	if stderrors.As(err, &fErr) {
		return fErr.Code == code
	}
	return false
}

// As returns the FolioError in err's chain, if any.
func As(err error) (*FolioError, bool) {
	var fErr *FolioError
	if stderrors.As(err, &fErr) {
		return fErr, true
	}
	return nil, false
}
