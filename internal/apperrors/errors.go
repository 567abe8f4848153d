package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

type Code string

const (
	CodeValidation        Code = "validation_failed"
	CodeBadRequest        Code = "bad_request"
	CodeUnauthorized      Code = "unauthorized"
	CodeForbidden         Code = "forbidden"
	CodeNotFound          Code = "not_found"
	CodeUnprocessable     Code = "unprocessable"
	CodeTooManyRequests   Code = "too_many_requests"
	CodeInternal          Code = "internal_error"
	CodePhoneNotVerified  Code = "phone_not_verified"
	CodeOnboarding        Code = "onboarding_required"
	CodeInvalidOTP        Code = "invalid_otp"
	CodeDocumentsRequired Code = "documents_required"
)

// AppError carries the HTTP status and client-facing message of a business failure.
type AppError struct {
	Code    Code              `json:"code"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"errors,omitempty"`
	Status  int               `json:"-"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithCode(code Code) *AppError {
	e.Code = code
	return e
}

func New(status int, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func Validation(fields map[string]string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: "The given data was invalid.",
		Fields:  fields,
		Status:  http.StatusUnprocessableEntity,
	}
}

// Field builds a single-field validation error.
func Field(field, message string) *AppError {
	return Validation(map[string]string{field: message})
}

func Unprocessable(message string) *AppError {
	return New(http.StatusUnprocessableEntity, CodeUnprocessable, message)
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, CodeBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, CodeForbidden, message)
}

func NotFound(resource string) *AppError {
	return New(http.StatusNotFound, CodeNotFound, resource+" not found")
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// From converts any error into an AppError. Record-not-found errors become 404s,
// everything else that is not already an AppError becomes a 500.
func From(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Resource")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Unprocessable("This record already exists")
	}

	return Internal(err)
}

func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
