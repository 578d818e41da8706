package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"tasklane.dev/internal/obs"
)

// RevocationKey derives the registry key of a raw token string. The token is
// not parsed, so a malformed or foreign token gets a key like any other.
func RevocationKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Janitor periodically drops revocation records whose token has expired on its
// own; such tokens fail verification anyway.
type Janitor struct {
	store    RevocationStore
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewJanitor returns a janitor pruning every interval. A non-positive interval
// makes Run return immediately.
func NewJanitor(store RevocationStore, interval time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = obs.Logger()
	}
	return &Janitor{store: store, interval: interval, now: time.Now, logger: logger}
}

// PruneOnce removes expired records and reports how many were dropped.
func (j *Janitor) PruneOnce(ctx context.Context) (int64, error) {
	n, err := j.store.PruneRevoked(ctx, j.now().UTC())
	if err != nil {
		return 0, err
	}
	obs.RecordPruned(n)
	return n, nil
}

// Run prunes on every tick until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		return
	}
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := j.PruneOnce(ctx)
			if err != nil {
				j.logger.Error("revocation prune failed", "error", err)
				continue
			}
			if n > 0 {
				j.logger.Info("revocation records pruned", "count", n)
			}
		}
	}
}
