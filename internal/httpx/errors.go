package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"watchtower/internal/dto"

	"github.com/go-playground/validator/v10"
)

// Error codes, used in logs only
const (
	CodeSuccess = 0

	// Parameter errors (2000-2099)
	CodeParamInvalid = 2002 // Parameter format error

	// Resource/Business errors (3000-3999)
	CodeNotFound         = 3001 // Resource not found
	CodeAlreadyExists    = 3002 // Resource already exists
	CodeMethodNotAllowed = 3004 // Route exists with another method

	// System errors (5000-5999)
	CodeInternalError = 5001 // Internal service error
	CodeDatabaseError = 5002 // Database error
)

// AppError represents an application error with HTTP status and a detail
// that is rendered to the client
type AppError struct {
	HTTPStatus int         // HTTP status code
	Code       int         // Business error code
	Message    string      // User-facing error message
	Err        error       // Internal error (for logging only, not returned to client)
	Detail     interface{} // Structured detail, replaces Message in the body when set
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%d, message=%s, err=%v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(httpStatus, code int, message string, err error) *AppError {
	return &AppError{
		HTTPStatus: httpStatus,
		Code:       code,
		Message:    message,
		Err:        err,
	}
}

// FieldError describes one invalid request field
type FieldError struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

// ErrValidation creates a 422 error carrying per-field details
func ErrValidation(details []FieldError) *AppError {
	e := NewAppError(http.StatusUnprocessableEntity, CodeParamInvalid, "validation error", nil)
	e.Detail = details
	return e
}

// ErrPathParam creates a 422 error for a malformed path parameter
func ErrPathParam(name, msg string) *AppError {
	return ErrValidation([]FieldError{{
		Loc:  []interface{}{"path", name},
		Msg:  msg,
		Type: "type_error.integer",
	}})
}

// ErrBinding converts a request body binding failure into a 422 error
func ErrBinding(err error) *AppError {
	return bindingError("body", err)
}

// ErrQuery converts a query string binding failure into a 422 error
func ErrQuery(err error) *AppError {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return ErrValidation([]FieldError{{
			Loc:  []interface{}{"query"},
			Msg:  "value is not a valid integer",
			Type: "type_error.integer",
		}})
	}
	return bindingError("query", err)
}

func bindingError(location string, err error) *AppError {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]FieldError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			details = append(details, FieldError{
				Loc:  []interface{}{location, fe.Field()},
				Msg:  fieldMessage(fe),
				Type: "value_error." + fe.Tag(),
			})
		}
		return ErrValidation(details)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return ErrValidation([]FieldError{{
			Loc:  []interface{}{location, typeErr.Field},
			Msg:  fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			Type: "type_error",
		}})
	}

	if errors.Is(err, dto.ErrNullNotAllowed) {
		return ErrValidation([]FieldError{{
			Loc:  []interface{}{location},
			Msg:  err.Error(),
			Type: "type_error.none.not_allowed",
		}})
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return ErrValidation([]FieldError{{
			Loc:  []interface{}{location, syntaxErr.Offset},
			Msg:  "JSON decode error",
			Type: "value_error.jsondecode",
		}})
	}

	return ErrValidation([]FieldError{{
		Loc:  []interface{}{location},
		Msg:  err.Error(),
		Type: "value_error",
	}})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		return fmt.Sprintf("ensure this value is at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("ensure this value is at most %s", fe.Param())
	case "ip":
		return "value is not a valid IP address"
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

// ErrNotFound creates a 404 not found error
func ErrNotFound(message string) *AppError {
	if message == "" {
		message = "Not Found"
	}
	return NewAppError(http.StatusNotFound, CodeNotFound, message, nil)
}

// ErrAlreadyExists creates a 409 already exists error
func ErrAlreadyExists(message string) *AppError {
	if message == "" {
		message = "resource already exists"
	}
	return NewAppError(http.StatusConflict, CodeAlreadyExists, message, nil)
}

// ErrMethodNotAllowed creates a 405 error
func ErrMethodNotAllowed() *AppError {
	return NewAppError(http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method Not Allowed", nil)
}

// ErrInternalError creates a 500 internal error
func ErrInternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "Internal server error", err)
}

// ErrDatabaseError creates a 500 database error; the cause is logged, not returned
func ErrDatabaseError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeDatabaseError, "Internal server error", err)
}
