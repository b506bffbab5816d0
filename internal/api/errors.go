package api

import (
	"errors"
	"net/http"
	"strings"
)

// Error is a non-2xx backend response. Detail carries the backend-provided
// message when the body had one, else the HTTP status text.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return http.StatusText(e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0 if err is not a
// backend response error.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsAuthFailure reports whether err indicates an invalid or expired
// credential. A 401 is definitive. Beyond that, some deployments signal auth
// failure through a 500 with a "could not validate credentials" detail, so
// the error text is checked as a best-effort fallback.
func IsAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	if StatusOf(err) == http.StatusUnauthorized {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "validate credentials") || strings.Contains(msg, "token")
}
