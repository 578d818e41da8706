package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"tasklane.dev/internal/apperr"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"status":  code,
		"error":   http.StatusText(code),
		"message": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// writeErr maps a domain error onto its status and client-safe message.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, apperr.Status(err), apperr.Message(err))
}

// decodeJSON reads exactly one JSON object. Failures wrap apperr.ErrBadRequest.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is required", apperr.ErrBadRequest)
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: request body too large", apperr.ErrBadRequest)
		default:
			return fmt.Errorf("%w: %s", apperr.ErrBadRequest, err.Error())
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON body", apperr.ErrBadRequest)
	}
	return nil
}
