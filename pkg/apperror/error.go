package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError independently of its HTTP code.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindUnauthorized  Kind = "unauthorized"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindInvalidState  Kind = "invalid_state"
	KindEligibility   Kind = "eligibility"
	KindConflict      Kind = "conflict"
	KindInternal      Kind = "internal"
)

type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	// State is the current state of the entity for invalid_state errors.
	State string `json:"state,omitempty"`
	Err   error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, kind Kind, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, KindValidation, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, KindUnauthorized, message, nil)
}

// Forbidden is the authorization error: the actor's role or ownership
// does not permit the action.
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, KindAuthorization, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, KindNotFound, message, nil)
}

// InvalidState reports an illegal transition together with the state the
// entity is currently in.
func InvalidState(message, current string) *AppError {
	e := New(http.StatusUnprocessableEntity, KindInvalidState, message, nil)
	e.State = current
	return e
}

func Ineligible(message string) *AppError {
	return New(http.StatusUnprocessableEntity, KindEligibility, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, KindConflict, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, KindInternal, "Internal Server Error", err)
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
