package apperror

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced to the route layer wraps exactly one of these,
// so handlers can map it to an HTTP status with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication failed")
	ErrState      = errors.New("invalid state")
	ErrDependency = errors.New("dependency failure")
)

// Specific failures that callers need to tell apart within a kind.
var (
	ErrMissingCredentials = fmt.Errorf("%w: missing credentials", ErrAuth)
	ErrNoSuchUser         = fmt.Errorf("%w: no such user", ErrAuth)
	ErrNotVerified        = fmt.Errorf("%w: account not verified", ErrAuth)
	ErrIncorrectPassword  = fmt.Errorf("%w: incorrect password", ErrAuth)
	ErrCodeMismatch       = fmt.Errorf("%w: code mismatch", ErrState)
	ErrCodeExpired        = fmt.Errorf("%w: code expired", ErrState)
	ErrNotAccepting       = fmt.Errorf("%w: not accepting messages", ErrState)
)

// AppError carries a machine-readable kind plus a human-readable message.
type AppError struct {
	Err     error  // the kind (or a specific failure wrapping a kind)
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Dependency wraps a failure from the store or an outbound service.
// Handlers map this to 500 and log the cause.
func Dependency(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrDependency,
		Message: fmt.Sprintf("%s: %v", op, cause),
	}
}

func MissingCredentials() *AppError {
	return &AppError{Err: ErrMissingCredentials, Message: "identifier and password are required"}
}

func NoSuchUser() *AppError {
	return &AppError{Err: ErrNoSuchUser, Message: "no account matches that username or email"}
}

func NotVerified() *AppError {
	return &AppError{Err: ErrNotVerified, Message: "please verify your account before signing in"}
}

func IncorrectPassword() *AppError {
	return &AppError{Err: ErrIncorrectPassword, Message: "incorrect password"}
}

func CodeMismatch() *AppError {
	return &AppError{Err: ErrCodeMismatch, Message: "code is not valid, please recheck and try again"}
}

func CodeExpired() *AppError {
	return &AppError{Err: ErrCodeExpired, Message: "code has expired"}
}

func NotAccepting(username string) *AppError {
	return &AppError{
		Err:     ErrNotAccepting,
		Message: fmt.Sprintf("user %s is not currently accepting messages", username),
	}
}
