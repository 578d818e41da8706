package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/tasks"
)

const taskColumns = `id, title, description, difficulty, status, owners, comment, deadline, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (tasks.Task, error) {
	var (
		t          tasks.Task
		difficulty string
		status     string
		owners     []byte
		deadline   sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &difficulty, &status, &owners,
		&t.Comment, &deadline, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return tasks.Task{}, err
	}
	if err := json.Unmarshal(owners, &t.Owners); err != nil {
		return tasks.Task{}, fmt.Errorf("decode owners: %w", err)
	}
	t.Difficulty = tasks.Difficulty(difficulty)
	t.Status = tasks.Status(status)
	if deadline.Valid {
		d := deadline.Time
		t.Deadline = &d
	}
	return t, nil
}

// ownerFilter is the jsonb containment operand matching any owner with userID.
func ownerFilter(userID string) string {
	b, _ := json.Marshal([]map[string]string{{"userId": userID}})
	return string(b)
}

// whereScope renders scope as a where clause with placeholders numbered from
// next.
func whereScope(scope tasks.Scope, next int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if scope.TaskID != "" {
		conds = append(conds, fmt.Sprintf("id = $%d", next+len(args)))
		args = append(args, scope.TaskID)
	}
	if scope.Restricted() {
		conds = append(conds, fmt.Sprintf("owners @> $%d::jsonb", next+len(args)))
		args = append(args, ownerFilter(scope.OwnerID))
	}
	if len(conds) == 0 {
		return "true", nil
	}
	return strings.Join(conds, " and "), args
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (s *Store) CreateTask(ctx context.Context, t *tasks.Task) error {
	owners, err := json.Marshal(t.Owners)
	if err != nil {
		return fmt.Errorf("encode owners: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into tasks (`+taskColumns+`)
		values ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10)
	`, t.ID, t.Title, t.Description, string(t.Difficulty), string(t.Status), string(owners),
		t.Comment, nullTime(t.Deadline), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: task %s", apperr.ErrConflict, t.ID)
		}
		return err
	}
	return nil
}

func (s *Store) ListTasks(ctx context.Context, scope tasks.Scope) ([]tasks.Task, error) {
	where, args := whereScope(scope, 1)
	rows, err := s.db.QueryContext(ctx,
		`select `+taskColumns+` from tasks where `+where+` order by created_at desc, id desc`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]tasks.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, scope tasks.Scope) (tasks.Task, error) {
	if scope.TaskID == "" {
		return tasks.Task{}, apperr.ErrNotFound
	}
	where, args := whereScope(scope, 1)
	return s.queryTask(ctx, `select `+taskColumns+` from tasks where `+where, args...)
}

func (s *Store) UpdateTask(ctx context.Context, scope tasks.Scope, p tasks.Patch, now time.Time) (tasks.Task, error) {
	if scope.TaskID == "" {
		return tasks.Task{}, apperr.ErrNotFound
	}
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Difficulty != nil {
		set("difficulty", string(*p.Difficulty))
	}
	if p.Status != nil {
		set("status", string(*p.Status))
	}
	if p.Comment != nil {
		set("comment", *p.Comment)
	}
	if p.Deadline != nil {
		set("deadline", nullTime(p.Deadline))
	}
	if p.ClearDeadline {
		sets = append(sets, "deadline = null")
	}
	set("updated_at", now)

	where, whereArgs := whereScope(scope, len(args)+1)
	args = append(args, whereArgs...)
	return s.queryTask(ctx,
		`update tasks set `+strings.Join(sets, ", ")+` where `+where+` returning `+taskColumns, args...)
}

// AddOwner appends owner in a single conditional update. Postgres re-checks
// the where clause against the latest row version after a concurrent update,
// so two assigns of the same user cannot both pass the non-membership test.
func (s *Store) AddOwner(ctx context.Context, scope tasks.Scope, owner tasks.Owner, now time.Time) (tasks.Task, error) {
	if scope.TaskID == "" {
		return tasks.Task{}, apperr.ErrNotFound
	}
	entry, err := json.Marshal([]tasks.Owner{owner})
	if err != nil {
		return tasks.Task{}, fmt.Errorf("encode owner: %w", err)
	}
	where, whereArgs := whereScope(scope, 4)
	args := append([]any{string(entry), now, ownerFilter(owner.UserID)}, whereArgs...)
	return s.queryTask(ctx, `
		update tasks set owners = owners || $1::jsonb, updated_at = $2
		where not owners @> $3::jsonb and `+where+`
		returning `+taskColumns, args...)
}

func (s *Store) DeleteTask(ctx context.Context, scope tasks.Scope) error {
	if scope.TaskID == "" {
		return apperr.ErrNotFound
	}
	where, args := whereScope(scope, 1)
	return requireAffected(s.db.ExecContext(ctx, `delete from tasks where `+where, args...))
}

func (s *Store) queryTask(ctx context.Context, query string, args ...any) (tasks.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return tasks.Task{}, apperr.ErrNotFound
	}
	return t, err
}
