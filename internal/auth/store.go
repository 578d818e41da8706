package auth

import (
	"context"
	"time"
)

// UserStore persists user records. Lookups that miss return an error wrapping
// apperr.ErrNotFound; a duplicate email on create wraps apperr.ErrConflict.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	SetRefreshTokenHash(ctx context.Context, userID, hash string) error
	SetUserRole(ctx context.Context, email string, role Role) error
}

// RevocationStore persists revoked token keys until their natural expiry.
type RevocationStore interface {
	// Revoke records key; recording the same key twice is not an error.
	Revoke(ctx context.Context, key string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, key string) (bool, error)
	// PruneRevoked drops records whose expiry is at or before now.
	PruneRevoked(ctx context.Context, now time.Time) (int64, error)
}
