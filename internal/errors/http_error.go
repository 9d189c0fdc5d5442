package errors

import (
	"errors"
	"net/http"

	"golfplace/internal/balance"
	"golfplace/internal/ledger"
	"golfplace/internal/timegrid"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// FromDomain maps the booking error taxonomy to HTTP status codes. All
// taxonomy members are expected outcomes returned to the caller, never
// generic 500s.
func FromDomain(err error) *HTTPError {
	switch {
	case errors.Is(err, ledger.ErrPastTime),
		errors.Is(err, ledger.ErrTooLateToCancel),
		errors.Is(err, timegrid.ErrInvalidTimeFormat),
		errors.Is(err, balance.ErrInsufficientBalance):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrSlotConflict):
		return NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	}
	return NewHTTPError(http.StatusInternalServerError, "internal error")
}
