package auth

import (
	"fmt"

	"tasklane.dev/internal/apperr"
)

var (
	// ErrInvalidToken indicates the token failed signature, class or expiry checks.
	ErrInvalidToken = fmt.Errorf("%w: Invalid token", apperr.ErrUnauthorized)
	// ErrRevoked indicates the token is present in the revocation registry.
	ErrRevoked            = fmt.Errorf("%w: Token has been invalidated", apperr.ErrUnauthorized)
	ErrInvalidCredentials = fmt.Errorf("%w: Invalid credentials", apperr.ErrUnauthorized)
	ErrEmailTaken         = fmt.Errorf("%w: Email already in use", apperr.ErrConflict)
	ErrLogoutFailed       = fmt.Errorf("%w: Logout failed", apperr.ErrInternal)
)
