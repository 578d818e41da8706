package pg

import (
	"context"
	"time"
)

func (s *Store) Revoke(ctx context.Context, key string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		insert into revoked_tokens (token_key, expires_at)
		values ($1, $2)
		on conflict (token_key) do nothing
	`, key, expiresAt.UTC())
	return err
}

func (s *Store) IsRevoked(ctx context.Context, key string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx,
		`select exists (select 1 from revoked_tokens where token_key = $1)`, key).Scan(&revoked)
	return revoked, err
}

func (s *Store) PruneRevoked(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `delete from revoked_tokens where expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
