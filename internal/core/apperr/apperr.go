package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable codes carried in the error body.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodeNoToken            = "NO_TOKEN"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserExists         = "USER_EXISTS"
	CodeAccountRejected    = "ACCOUNT_REJECTED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

// FieldError is one violated field of a payload.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is the typed error every service returns. Status is the HTTP status
// the transport layer answers with.
type Error struct {
	Status     int
	Code       string
	Msg        string
	Details    []FieldError
	RetryAfter int
	Err        error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		if e.Err != nil {
			return e.Msg + ": " + e.Err.Error()
		}
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Status and Code so callers can compare against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Status == t.Status && (t.Code == "" || e.Code == t.Code)
}

func New(status int, code, msg string) *Error {
	return &Error{Status: status, Code: code, Msg: msg}
}

func BadRequest(msg string) *Error { return New(http.StatusBadRequest, CodeBadRequest, msg) }

func Validation(details []FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Msg: "Validation failed", Details: details}
}

func Unauthorized(code, msg string) *Error { return New(http.StatusUnauthorized, code, msg) }

func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "Insufficient permissions"
	}
	return New(http.StatusForbidden, CodeForbidden, msg)
}

func NotFound(what string) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", what))
}

func Conflict(msg string) *Error { return New(http.StatusConflict, CodeConflict, msg) }

func TooManyRequests(msg string, retryAfter int) *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: CodeRateLimited, Msg: msg, RetryAfter: retryAfter}
}

func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Msg: msg, Err: err}
}

// From converts any error into an *Error, defaulting to 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("Internal server error", err)
}

// StatusOf returns the HTTP status an error maps to.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return From(err).Status
}
