package api

import (
	"errors"
	"fmt"
	"net/http"

	"keyconsole/internal/jsonutil"
)

// GenericAuthFailure is reported when the auth endpoint rejects a login
// without saying why.
const GenericAuthFailure = "Authentication failed"

// AuthError is returned by Authenticate when the server answers non-2xx.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// StatusError is a non-2xx answer from any other endpoint.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: %s", http.StatusText(e.Status))
	}
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the platform.
func IsUnauthorized(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusUnauthorized
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Status == http.StatusUnauthorized
	}
	return false
}

// statusError builds a StatusError from a non-2xx response. It consumes the body.
func statusError(resp *http.Response) *StatusError {
	return &StatusError{
		Status:  resp.StatusCode,
		Message: jsonutil.ReadErrorMessage(resp.Body),
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
