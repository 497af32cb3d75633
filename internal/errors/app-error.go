package app_error

import (
	"encoding/json"
	"net/http"
)

// Kind classifies an AppError beyond its HTTP status code so callers can
// branch without string matching.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindInvalidState  Kind = "invalid_state"
	KindInternal      Kind = "internal"
)

type AppError struct {
	Kind    Kind   `json:"-"`
	Code    int    `json:"-"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e AppError) Error() string {
	return e.Message
}

func (e AppError) JSON(w http.ResponseWriter) error {
	return json.NewEncoder(w).Encode(e)
}

func NewAppError(code int, msg, field string) *AppError {
	return &AppError{
		Kind:    kindFromCode(code),
		Code:    code,
		Message: msg,
		Field:   field,
	}
}

func Validation(msg, field string) *AppError {
	return &AppError{Kind: KindValidation, Code: http.StatusBadRequest, Message: msg, Field: field}
}

func NotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Code: http.StatusNotFound, Message: msg}
}

func Authorization(msg string) *AppError {
	return &AppError{Kind: KindAuthorization, Code: http.StatusForbidden, Message: msg}
}

func InvalidState(msg string) *AppError {
	return &AppError{Kind: KindInvalidState, Code: http.StatusConflict, Message: msg}
}

func Internal(msg, field string) *AppError {
	return &AppError{Kind: KindInternal, Code: http.StatusInternalServerError, Message: msg, Field: field}
}

func kindFromCode(code int) Kind {
	switch code {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthorization
	case http.StatusConflict:
		return KindInvalidState
	default:
		return KindInternal
	}
}
