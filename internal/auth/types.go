package auth

import (
	"strings"
	"time"
)

// Role is the coarse permission level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole accepts "user" or "admin" in any case.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// User is a persisted account. Hashes never leave the service.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	Role             Role
	RefreshTokenHash string
	CreatedAt        time.Time
}

// Identity is what the access guard attaches to an authenticated request.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// IsAdmin reports whether the identity bypasses ownership scoping.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// TokenClass selects the secret and lifetime a token is bound to.
type TokenClass string

const (
	AccessToken  TokenClass = "access"
	RefreshToken TokenClass = "refresh"
)

// TokenPair represents access and refresh tokens along with their expirations.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Session is the result of a successful register or login.
type Session struct {
	User   User
	Tokens TokenPair
}

// RoleSource controls where the guard takes the requester's role from.
type RoleSource string

const (
	// RoleFromToken trusts the role claim; a role change applies after re-login.
	RoleFromToken RoleSource = "token"
	// RoleFromStore re-reads the role from the user store on every request.
	RoleFromStore RoleSource = "store"
)
