package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultIssuer     = "tasklane"
	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims represents JWT claims used across the service.
type Claims struct {
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  Role       `json:"role"`
	Class TokenClass `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies access and refresh tokens, each class with
// its own HS256 secret and lifetime.
type TokenService struct {
	issuer  string
	secrets map[TokenClass][]byte
	ttls    map[TokenClass]time.Duration
	now     func() time.Time
}

// TokenOption configures TokenService behavior.
type TokenOption func(*TokenService) error

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) error {
		if issuer = strings.TrimSpace(issuer); issuer != "" {
			s.issuer = issuer
		}
		return nil
	}
}

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) error {
		if ttl > 0 {
			s.ttls[AccessToken] = ttl
		}
		return nil
	}
}

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) error {
		if ttl > 0 {
			s.ttls[RefreshToken] = ttl
		}
		return nil
	}
}

// WithTokenClock overrides time source (useful for tests).
func WithTokenClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// NewTokenService requires two non-empty, distinct secrets.
func NewTokenService(accessSecret, refreshSecret string, opts ...TokenOption) (*TokenService, error) {
	accessSecret = strings.TrimSpace(accessSecret)
	refreshSecret = strings.TrimSpace(refreshSecret)
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("auth: access and refresh secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	s := &TokenService{
		issuer: defaultIssuer,
		secrets: map[TokenClass][]byte{
			AccessToken:  []byte(accessSecret),
			RefreshToken: []byte(refreshSecret),
		},
		ttls: map[TokenClass]time.Duration{
			AccessToken:  DefaultAccessTTL,
			RefreshToken: DefaultRefreshTTL,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// TTL returns the lifetime configured for class.
func (s *TokenService) TTL(class TokenClass) time.Duration { return s.ttls[class] }

// Issue signs a token of the given class for u.
func (s *TokenService) Issue(u User, class TokenClass) (string, time.Time, error) {
	secret, ok := s.secrets[class]
	if !ok {
		return "", time.Time{}, fmt.Errorf("auth: unknown token class %q", class)
	}
	if strings.TrimSpace(u.ID) == "" {
		return "", time.Time{}, errors.New("auth: subject is required")
	}
	now := s.now().UTC()
	exp := now.Add(s.ttls[class])
	claims := Claims{
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		Class: class,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// IssuePair signs one access and one refresh token for u.
func (s *TokenService) IssuePair(u User) (TokenPair, error) {
	access, accessExp, err := s.Issue(u, AccessToken)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := s.Issue(u, RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Verify checks signature, algorithm, issuer, class and expiry. Every failure
// is reported as ErrInvalidToken.
func (s *TokenService) Verify(token string, class TokenClass) (*Claims, error) {
	token = strings.TrimSpace(token)
	secret, ok := s.secrets[class]
	if token == "" || !ok {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Class != class || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExpiresAt reads the exp claim without checking the signature. Only call it
// on tokens that already passed Verify.
func (s *TokenService) ExpiresAt(token string) (time.Time, bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
