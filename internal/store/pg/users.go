package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/auth"
)

const userColumns = `id, name, email, password_hash, role, coalesce(refresh_token_hash, ''), created_at`

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users (id, name, email, password_hash, role, refresh_token_hash, created_at)
		values ($1, $2, $3, $4, $5, nullif($6, ''), $7)
	`, u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.RefreshTokenHash, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email %s", apperr.ErrConflict, u.Email)
		}
		return err
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findUser(ctx, `select `+userColumns+` from users where email = $1`, email)
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*auth.User, error) {
	return s.findUser(ctx, `select `+userColumns+` from users where id = $1`, id)
}

func (s *Store) findUser(ctx context.Context, query string, arg string) (*auth.User, error) {
	var (
		u    auth.User
		role string
	)
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.RefreshTokenHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	return &u, nil
}

func (s *Store) SetRefreshTokenHash(ctx context.Context, userID, hash string) error {
	return requireAffected(s.db.ExecContext(ctx,
		`update users set refresh_token_hash = $2 where id = $1`, userID, hash))
}

func (s *Store) SetUserRole(ctx context.Context, email string, role auth.Role) error {
	return requireAffected(s.db.ExecContext(ctx,
		`update users set role = $2 where email = $1`, email, string(role)))
}
