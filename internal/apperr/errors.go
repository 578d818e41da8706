// Package apperr holds the error taxonomy shared by the domain packages and
// its mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal error")
)

// Status maps an error onto the HTTP status code of its taxonomy class.
// Errors outside the taxonomy are treated as internal.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-safe part of a wrapped taxonomy error.
// For "not found: task" it returns "task". Unknown errors yield a generic text
// so storage details never reach the client.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, sentinel := range []error{ErrUnauthorized, ErrConflict, ErrNotFound, ErrBadRequest, ErrInternal} {
		if !errors.Is(err, sentinel) {
			continue
		}
		msg := err.Error()
		prefix := sentinel.Error() + ": "
		if i := strings.Index(msg, prefix); i >= 0 {
			return msg[i+len(prefix):]
		}
		return sentinel.Error()
	}
	return ErrInternal.Error()
}
