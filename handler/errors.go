package handler

import (
	"errors"
	"net/http"
)

var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with a status code, a stable machine key and the
// message sent to the client. RetryAfter, in seconds, is reported on 429.
type HTTPError struct {
	Code       int
	Key        string
	Message    string
	RetryAfter int
}

func (e HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Key
}

// WithMessage returns a copy of e carrying msg.
func (e HTTPError) WithMessage(msg string) HTTPError {
	e.Message = msg
	return e
}

// WithRetryAfter returns a copy of e carrying the retry hint.
func (e HTTPError) WithRetryAfter(seconds int) HTTPError {
	e.RetryAfter = seconds
	return e
}

// NewHTTPError creates an error for status code with the given key and
// client message.
func NewHTTPError(code int, key, message string) HTTPError {
	return HTTPError{Code: code, Key: key, Message: message}
}

var (
	ErrBadRequest           = HTTPError{Code: http.StatusBadRequest, Key: "bad_request", Message: "Bad request"}
	ErrUnauthorized         = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized", Message: "Unauthorized"}
	ErrNotFound             = HTTPError{Code: http.StatusNotFound, Key: "not_found", Message: "Not found"}
	ErrUnsupportedMediaType = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type", Message: "Content-Type must be application/json"}
	ErrTooManyRequests      = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests", Message: "Too many requests"}
	ErrInternalServerError  = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error", Message: "Internal server error"}
	ErrServiceUnavailable   = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable", Message: "Service unavailable"}
)
