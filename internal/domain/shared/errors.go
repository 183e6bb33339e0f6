package shared

import (
	"errors"
	"unicode/utf8"
)

// Error codes shared across the checkout, payment and wallet domains.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeGateway             = "GATEWAY_ERROR"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInternal            = "INTERNAL_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so sentinel comparisons work on wrapped copies
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithCause returns a copy of the error that wraps cause
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, cause: cause}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrConflict            = NewDomainError(CodeConflict, "Resource was modified concurrently, refresh and retry")
	ErrGateway             = NewDomainError(CodeGateway, "Payment gateway request failed")
	ErrInsufficientBalance = NewDomainError(CodeInsufficientBalance, "Insufficient balance available")
	ErrInternal            = NewDomainError(CodeInternal, "Internal error")
)

// NewValidationError creates a VALIDATION_ERROR with a custom message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates a NOT_FOUND error with a custom message
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewGatewayError creates a GATEWAY_ERROR wrapping the adapter failure
func NewGatewayError(message string, cause error) *DomainError {
	return NewDomainError(CodeGateway, message).WithCause(cause)
}

// NewConflictError creates a CONFLICT error wrapping a storage conflict
func NewConflictError(cause error) *DomainError {
	return ErrConflict.WithCause(cause)
}

// ErrorCode returns the domain code carried by err, or INTERNAL_ERROR
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FailureReason renders err for a failure_reason column holding at most
// limit bytes. The cut never splits a UTF-8 sequence.
func FailureReason(err error, limit int) string {
	s := err.Error()
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
