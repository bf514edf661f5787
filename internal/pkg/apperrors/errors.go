package apperrors

import (
	"errors"
	"fmt"
)

// Error categories. Handlers map these to HTTP status codes; everything
// more specific below wraps exactly one of them.
var (
	ErrResourceNotFound   = errors.New("resource not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrValidationFailed   = errors.New("validation failed")
	ErrBadRequest         = errors.New("bad request")
	ErrRateLimited        = errors.New("too many requests")
)

// Token errors
var (
	ErrTokenMissing = errors.New("token missing")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// Account errors
var (
	ErrAccountNotFound     = fmt.Errorf("account not found: %w", ErrResourceNotFound)
	ErrProfileNotFound     = fmt.Errorf("profile not found: %w", ErrResourceNotFound)
	ErrAccountDisabled     = fmt.Errorf("account is disabled: %w", ErrInvalidCredentials)
	ErrUsernameTaken       = fmt.Errorf("username already exists: %w", ErrConflict)
	ErrEmailTaken          = fmt.Errorf("email already exists: %w", ErrConflict)
	ErrIdentityTaken       = fmt.Errorf("username or email already exists: %w", ErrConflict)
	ErrStudentIDTaken      = fmt.Errorf("student ID already exists: %w", ErrConflict)
	ErrInvalidRole         = fmt.Errorf("invalid role: %w", ErrValidationFailed)
	ErrMissingRoleData     = fmt.Errorf("role specific data is required: %w", ErrValidationFailed)
	ErrInvalidPhone        = fmt.Errorf("invalid phone number: %w", ErrValidationFailed)
	ErrInvalidUpload       = fmt.Errorf("invalid upload: %w", ErrBadRequest)
	ErrCoordinatorNotFound = fmt.Errorf("coordinator profile not found: %w", ErrResourceNotFound)
)

// Company update errors
var (
	ErrCompanyUpdateNotFound = fmt.Errorf("company update not found: %w", ErrResourceNotFound)
	ErrInvalidStatus         = fmt.Errorf("invalid status: %w", ErrValidationFailed)
	ErrStatusNotAllowed      = fmt.Errorf("status change not allowed: %w", ErrPermissionDenied)
	ErrInvalidTransition     = fmt.Errorf("status transition not allowed from current state: %w", ErrConflict)
	ErrUpdateLocked          = fmt.Errorf("company update can no longer be modified: %w", ErrConflict)
)

// Student directory errors
var (
	ErrStudentNotFound = fmt.Errorf("student not found: %w", ErrResourceNotFound)
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError reports a single invalid field.
func NewValidationError(field, message string) error {
	return (&CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}).WithDetails(map[string]interface{}{"field": field})
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// PublicMessage returns the message safe to show to API clients. Wrapped
// sentinel chains collapse to the outermost CustomError message.
func PublicMessage(err error) string {
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return ""
}
