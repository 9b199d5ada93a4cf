package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an AppError for callers and transport layers.
type ErrorCode string

const (
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeValidation          ErrorCode = "VALIDATION"
	CodeInvalidTransition   ErrorCode = "INVALID_TRANSITION"
	CodeStoreUnavailable    ErrorCode = "STORE_UNAVAILABLE"
	CodeAllocationExhausted ErrorCode = "ALLOCATION_EXHAUSTED"
	CodeConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"
	CodeConstraintMismatch  ErrorCode = "CONSTRAINT_MISMATCH"
)

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrNotFound            = &AppError{Code: CodeNotFound}
	ErrValidation          = &AppError{Code: CodeValidation}
	ErrInvalidTransition   = &AppError{Code: CodeInvalidTransition}
	ErrStoreUnavailable    = &AppError{Code: CodeStoreUnavailable}
	ErrAllocationExhausted = &AppError{Code: CodeAllocationExhausted}
	ErrConstraintViolation = &AppError{Code: CodeConstraintViolation}
	ErrConstraintMismatch  = &AppError{Code: CodeConstraintMismatch}
)

// AppError is the error type shared by every layer of the service.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the caller may retry the operation with backoff.
func (e *AppError) Retryable() bool {
	return e.Code == CodeStoreUnavailable
}

// NewNotFoundError creates a not-found error for the given entity.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", entity, id),
	}
}

// NewValidationError creates a validation error.
func NewValidationError(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg}
}

// NewInvalidStateError creates an error for an illegal state transition.
func NewInvalidStateError(from, to string) *AppError {
	return &AppError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewStoreUnavailableError wraps an infrastructure failure of the backing store.
func NewStoreUnavailableError(op string, err error) *AppError {
	return &AppError{
		Code:    CodeStoreUnavailable,
		Message: fmt.Sprintf("store unavailable during %s", op),
		Err:     err,
	}
}

// NewAllocationExhaustedError reports that no unique identifier could be obtained.
func NewAllocationExhaustedError(attempts int) *AppError {
	return &AppError{
		Code:    CodeAllocationExhausted,
		Message: fmt.Sprintf("could not allocate a unique booking identifier after %d attempts", attempts),
	}
}

// NewConstraintViolationError reports a rejected insert (duplicate key).
func NewConstraintViolationError(msg string, err error) *AppError {
	return &AppError{Code: CodeConstraintViolation, Message: msg, Err: err}
}

// NewConstraintMismatchError reports a compare-and-set update that matched no row.
func NewConstraintMismatchError(msg string) *AppError {
	return &AppError{Code: CodeConstraintMismatch, Message: msg}
}

// CodeOf extracts the code of the first AppError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}
