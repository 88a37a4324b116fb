package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Machine readable error codes returned alongside the message.
const (
	CodeValidation      = "validation_error"
	CodeNotFound        = "not_found"
	CodeAlreadyArchived = "already_archived"
	CodeNotArchived     = "not_archived"
	CodeInvalidRequest  = "invalid_request"
	CodeConflict        = "conflict"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeStorage         = "storage_error"
	CodeUnavailable     = "unavailable"
	CodeInternal        = "internal_error"
)

// APIError is an error that knows how it should be rendered over HTTP.
type APIError struct {
	Status   int    `json:"-"`
	Code     string `json:"code"`
	Message  string `json:"error"`
	Details  any    `json:"details,omitempty"`
	Internal error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Internal
}

// WithDetails returns a copy of the error carrying extra details for the client.
func (e *APIError) WithDetails(details any) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

func New(status int, code, message string, err error) *APIError {
	return &APIError{Status: status, Code: code, Message: message, Internal: err}
}

func BadRequest(message string, err error) *APIError {
	return New(http.StatusBadRequest, CodeValidation, message, err)
}

func NotFound(message string, err error) *APIError {
	return New(http.StatusNotFound, CodeNotFound, message, err)
}

func AlreadyArchived(message string) *APIError {
	return New(http.StatusBadRequest, CodeAlreadyArchived, message, nil)
}

func NotArchived(message string) *APIError {
	return New(http.StatusBadRequest, CodeNotArchived, message, nil)
}

func InvalidRequest(message string) *APIError {
	return New(http.StatusBadRequest, CodeInvalidRequest, message, nil)
}

func Conflict(message string, err error) *APIError {
	return New(http.StatusConflict, CodeConflict, message, err)
}

func Unauthorized(message string, err error) *APIError {
	return New(http.StatusUnauthorized, CodeUnauthorized, message, err)
}

func Forbidden(message string, err error) *APIError {
	return New(http.StatusForbidden, CodeForbidden, message, err)
}

func Unavailable(message string) *APIError {
	return New(http.StatusServiceUnavailable, CodeUnavailable, message, nil)
}

// Storage wraps a failed query or transaction. The underlying message is passed
// through in details for operators.
func Storage(err error) *APIError {
	apiErr := New(http.StatusInternalServerError, CodeStorage, "Storage error", err)
	if err != nil {
		apiErr.Details = err.Error()
	}
	return apiErr
}

func Internal(err error) *APIError {
	return New(http.StatusInternalServerError, CodeInternal, "Internal server error", err)
}

// NewValidationError converts binding errors into a 400 listing the failing fields.
func NewValidationError(err error) *APIError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fmt.Sprintf("failed on '%s'", fe.Tag())
		}
		return BadRequest("Invalid input", err).WithDetails(fields)
	}
	return BadRequest("Invalid input", err)
}

// HasCode reports whether err is an APIError with the given code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
