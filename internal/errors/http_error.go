package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
)

// Machine readable codes returned in the "code" field of error bodies.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidDuration     = "INVALID_DURATION"
	CodeInvalidID           = "INVALID_ID"
	CodeInvalidAction       = "INVALID_ACTION"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodePastDate            = "PAST_DATE"
	CodeOverlap             = "OVERLAP"
	CodeBlackout            = "BLACKOUT"
	CodeClosed              = "CLOSED"
	CodeOutsideHours        = "OUTSIDE_HOURS"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeAlreadyCancelled    = "ALREADY_CANCELLED"
	CodeCancellationExpired = "CANCELLATION_EXPIRED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeRateLimited         = "RATE_LIMITED"
	CodeUnavailable         = "SERVICE_UNAVAILABLE"
	CodeDB                  = "DB_ERROR"
	CodeInternal            = "INTERNAL_ERROR"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int    `json:"-"`
	ErrCode string `json:"code"`
	Message string `json:"error"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, errCode, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		ErrCode: errCode,
		Message: message,
	}
}

// Helpers for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, CodeUnauthorized, msg) }
	ErrBadRequest   = func(errCode, msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, errCode, msg) }
	ErrNotFound     = func(msg string) *HTTPError { return NewHTTPError(http.StatusNotFound, CodeNotFound, msg) }
	ErrConflict     = func(errCode, msg string) *HTTPError { return NewHTTPError(http.StatusConflict, errCode, msg) }
	ErrUnprocessable = func(errCode, msg string) *HTTPError {
		return NewHTTPError(http.StatusUnprocessableEntity, errCode, msg)
	}
	ErrTooManyRequests = func() *HTTPError {
		return NewHTTPError(http.StatusTooManyRequests, CodeRateLimited, "Troppe richieste, riprova tra poco")
	}
	ErrDatabase = func() *HTTPError { return NewHTTPError(http.StatusInternalServerError, CodeDB, "Database error") }
)

// As extracts an *HTTPError from err, falling back to a generic 500.
func As(err error) *HTTPError {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr
	}
	return NewHTTPError(http.StatusInternalServerError, CodeInternal, "Internal server error")
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as {"error": ..., "code": ...}.
func WriteError(w http.ResponseWriter, err error) {
	httpErr := As(err)
	WriteJSON(w, httpErr.Code, httpErr)
}
