package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/auth"
	"tasklane.dev/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var errNoToken = fmt.Errorf("%w: Unauthorized", apperr.ErrUnauthorized)

// guarded runs the access guard before h: bearer extraction, revocation
// lookup, then access-token verification. The identity and raw token are
// attached to the request context.
func (a *API) guarded(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r.Header.Get(authHeader))
		if !ok {
			obs.RecordGuardRejection("missing_token")
			writeErr(w, r, errNoToken)
			return
		}

		id, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			obs.RecordGuardRejection(rejectionReason(err))
			writeErr(w, r, err)
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), id)
		ctx = auth.ContextWithToken(ctx, token)
		h(w, r.WithContext(ctx))
	})
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrRevoked):
		return "revoked"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid_token"
	default:
		return "error"
	}
}

func extractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearer) || header[:len(bearer)] != bearer {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
