package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/ids"
	"tasklane.dev/internal/obs"
)

// Service registers users, logs them in and out, and authenticates bearer
// tokens for the access guard.
type Service struct {
	users       UserStore
	revocations RevocationStore
	tokens      *TokenService
	hasher      *Hasher
	roleSource  RoleSource
	now         func() time.Time
	logger      *slog.Logger
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithHasher overrides the default cost-12 hasher.
func WithHasher(h *Hasher) ServiceOption {
	return func(s *Service) error {
		if h != nil {
			s.hasher = h
		}
		return nil
	}
}

// WithRoleSource selects where Authenticate reads the requester's role from.
func WithRoleSource(src RoleSource) ServiceOption {
	return func(s *Service) error {
		switch src {
		case "":
		case RoleFromToken, RoleFromStore:
			s.roleSource = src
		default:
			return fmt.Errorf("auth: unknown role source %q", src)
		}
		return nil
	}
}

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// WithLogger sets the logger used for storage faults.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) error {
		if l != nil {
			s.logger = l
		}
		return nil
	}
}

// NewService constructs Service with optional configuration.
func NewService(users UserStore, revocations RevocationStore, tokens *TokenService, opts ...ServiceOption) (*Service, error) {
	if users == nil || revocations == nil || tokens == nil {
		return nil, errors.New("auth: users, revocations and tokens are required")
	}
	svc := &Service{
		users:       users,
		revocations: revocations,
		tokens:      tokens,
		roleSource:  RoleFromToken,
		now:         time.Now,
		logger:      obs.Logger(),
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	if svc.hasher == nil {
		h, err := NewHasher(MinPasswordCost, 0)
		if err != nil {
			return nil, err
		}
		svc.hasher = h
	}
	return svc, nil
}

// Tokens exposes the token service the Service signs with.
func (s *Service) Tokens() *TokenService { return s.tokens }

// Register creates a user with the "user" role and opens a session for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return Session{}, err
	}

	existing, err := s.users.FindUserByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return Session{}, ErrEmailTaken
	case err != nil && !errors.Is(err, apperr.ErrNotFound):
		return Session{}, s.internal("lookup user", err)
	}

	hash, err := s.hasher.HashPassword(ctx, in.Password)
	if err != nil {
		return Session{}, s.internal("hash password", err)
	}
	user := User{
		ID:           ids.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         RoleUser,
		CreatedAt:    s.now().UTC(),
	}
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return Session{}, s.internal("issue tokens", err)
	}
	user.RefreshTokenHash = HashRefreshToken(pair.RefreshToken)

	if err := s.users.CreateUser(ctx, &user); err != nil {
		// A concurrent registration can win between the lookup and the insert.
		if errors.Is(err, apperr.ErrConflict) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, s.internal("create user", err)
	}
	return Session{User: user, Tokens: pair}, nil
}

// Login checks credentials and replaces the stored refresh token hash.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return Session{}, err
	}

	user, err := s.users.FindUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, s.internal("lookup user", err)
	}
	if err := s.hasher.VerifyPassword(ctx, user.PasswordHash, in.Password); err != nil {
		if ctx.Err() != nil {
			return Session{}, ctx.Err()
		}
		return Session{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(*user)
	if err != nil {
		return Session{}, s.internal("issue tokens", err)
	}
	hash := HashRefreshToken(pair.RefreshToken)
	if err := s.users.SetRefreshTokenHash(ctx, user.ID, hash); err != nil {
		return Session{}, s.internal("store refresh hash", err)
	}
	user.RefreshTokenHash = hash
	return Session{User: *user, Tokens: pair}, nil
}

// Logout revokes the access token until its own expiry.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	expiresAt, ok := s.tokens.ExpiresAt(accessToken)
	if !ok {
		expiresAt = s.now().UTC().Add(s.tokens.TTL(AccessToken))
	}
	if err := s.revocations.Revoke(ctx, RevocationKey(accessToken), expiresAt); err != nil {
		s.logger.ErrorContext(ctx, "revoke token", "error", err)
		return ErrLogoutFailed
	}
	return nil
}

// Authenticate runs the guard checks on a bearer token: revocation first, then
// signature and expiry as an access token.
func (s *Service) Authenticate(ctx context.Context, token string) (Identity, error) {
	revoked, err := s.revocations.IsRevoked(ctx, RevocationKey(token))
	if err != nil {
		return Identity{}, s.internal("revocation lookup", err)
	}
	if revoked {
		return Identity{}, ErrRevoked
	}

	claims, err := s.tokens.Verify(token, AccessToken)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	id := Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}
	if s.roleSource == RoleFromStore {
		user, err := s.users.FindUserByID(ctx, id.ID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return Identity{}, ErrInvalidToken
			}
			return Identity{}, s.internal("lookup user", err)
		}
		id.Role = user.Role
	}
	if _, ok := ParseRole(string(id.Role)); !ok {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}

// PromoteUser sets the stored role of the user with the given email.
func (s *Service) PromoteUser(ctx context.Context, email string, role Role) error {
	if _, ok := ParseRole(string(role)); !ok {
		return badRequest("unknown role %q", role)
	}
	return s.users.SetUserRole(ctx, NormalizeEmail(email), role)
}

func (s *Service) internal(op string, err error) error {
	s.logger.Error("auth "+op, "error", err)
	return fmt.Errorf("auth %s: %w", op, apperr.ErrInternal)
}
