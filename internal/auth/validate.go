package auth

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"tasklane.dev/internal/apperr"
)

const (
	minNameLen     = 3
	maxNameLen     = 30
	minPasswordLen = 6
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

// RegisterInput is the validated shape of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is the validated shape of a login request. Role is accepted from
// clients but never used: claims always carry the stored role.
type LoginInput struct {
	Email    string
	Password string
	Role     string
}

// Normalize trims fields and lower-cases the email.
func (in *RegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
}

// Validate reports the first invalid field as a bad request.
func (in RegisterInput) Validate() error {
	if n := utf8.RuneCountInString(in.Name); n < minNameLen || n > maxNameLen {
		return badRequest("name must be between %d and %d characters", minNameLen, maxNameLen)
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if len(in.Password) < minPasswordLen {
		return badRequest("password must be at least %d characters", minPasswordLen)
	}
	if len(in.Password) > maxPasswordBytes {
		return badRequest("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

// Normalize lower-cases the email.
func (in *LoginInput) Normalize() {
	in.Email = NormalizeEmail(in.Email)
}

// Validate only checks presence; wrong values are reported as bad credentials.
func (in LoginInput) Validate() error {
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if in.Password == "" {
		return badRequest("password is required")
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return badRequest("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return badRequest("email must be a valid address")
	}
	return nil
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperr.ErrBadRequest, fmt.Sprintf(format, args...))
}
