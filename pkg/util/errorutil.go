package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Fields     map[string]string
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether the error carries per-field violations.
func (e *DomainError) IsValidation() bool {
	return e.Code == CodeValidationFailed
}

const (
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeBadCredentials   = "BAD_CREDENTIALS"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeAccessDenied     = "ACCESS_DENIED"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL_ERROR"
)

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

// NewInvalidArgument reports a user-correctable rejection such as a taken username.
func NewInvalidArgument(message string) error {
	return NewDomainError(CodeInvalidArgument, message, http.StatusBadRequest)
}

// NewValidationError reports request-body violations keyed by field name.
func NewValidationError(fields map[string]string) error {
	if fields == nil {
		fields = map[string]string{}
	}
	return &DomainError{
		Code:       CodeValidationFailed,
		Message:    "Validation failed",
		HTTPStatus: http.StatusBadRequest,
		Fields:     fields,
	}
}

func NewBadCredentials() error {
	return NewDomainError(CodeBadCredentials, "Bad credentials", http.StatusUnauthorized)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized)
}

func NewAccessDenied() error {
	return NewDomainError(CodeAccessDenied, "Access denied", http.StatusForbidden)
}

func NewNotFound(resource string) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewMethodNotAllowed() error {
	return NewDomainError(CodeMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed)
}

// NewInternalError hides err behind a generic message; err is kept for logging only.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromFiberError(fiberErr)
	}
	return NewInternalError(err).(*DomainError)
}

func fromFiberError(err *fiber.Error) *DomainError {
	switch err.Code {
	case http.StatusMethodNotAllowed:
		return NewMethodNotAllowed().(*DomainError)
	case http.StatusNotFound:
		return NewDomainError(CodeNotFound, err.Message, http.StatusNotFound)
	case http.StatusUnauthorized:
		return NewUnauthorized(err.Message).(*DomainError)
	case http.StatusForbidden:
		return NewAccessDenied().(*DomainError)
	}
	if err.Code >= 400 && err.Code < 500 {
		return NewDomainError(CodeInvalidArgument, err.Message, err.Code)
	}
	return NewInternalError(err).(*DomainError)
}
