package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MinPasswordCost is the lowest bcrypt work factor accepted for passwords.
const MinPasswordCost = 12

// Hasher runs bcrypt under a weighted semaphore so concurrent logins queue
// for CPU instead of piling up, and a cancelled request stops waiting.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewHasher builds a Hasher. parallelism <= 0 means GOMAXPROCS.
func NewHasher(cost int, parallelism int64) (*Hasher, error) {
	if cost < MinPasswordCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost must be between %d and %d", MinPasswordCost, bcrypt.MaxCost)
	}
	if parallelism <= 0 {
		parallelism = int64(runtime.GOMAXPROCS(0))
	}
	return &Hasher{cost: cost, sem: semaphore.NewWeighted(parallelism)}, nil
}

// HashPassword hashes plaintext password using bcrypt.
func (h *Hasher) HashPassword(ctx context.Context, password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares plaintext password with stored hash.
func (h *Hasher) VerifyPassword(ctx context.Context, hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.sem.Release(1)
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// HashRefreshToken returns the hex SHA-256 digest stored in place of a refresh
// token. bcrypt cannot be used here: a JWT exceeds its 72 byte input limit.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// MatchRefreshToken compares token against a stored digest in constant time.
func MatchRefreshToken(expectedHash, token string) bool {
	actual := HashRefreshToken(token)
	if len(expectedHash) != len(actual) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expectedHash), []byte(actual)) == 1
}
