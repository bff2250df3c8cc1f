package errors

import "net/http"

// HTTPError carries the status code the handler layer should answer with
// when none of the booking sentinels apply.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// ErrUnauthorized rejects requests that fail admin authentication, both at
// login and in the admin middleware.
var ErrUnauthorized = NewHTTPError(http.StatusUnauthorized, "unauthorized")
