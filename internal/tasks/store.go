package tasks

import (
	"context"
	"time"

	"tasklane.dev/internal/auth"
)

// Store persists tasks. Every call except CreateTask runs under a Scope, and a
// scope that matches nothing yields an error wrapping apperr.ErrNotFound.
type Store interface {
	CreateTask(ctx context.Context, t *Task) error
	ListTasks(ctx context.Context, scope Scope) ([]Task, error)
	GetTask(ctx context.Context, scope Scope) (Task, error)
	UpdateTask(ctx context.Context, scope Scope, p Patch, now time.Time) (Task, error)
	// AddOwner appends owner in one atomic conditional write whose filter
	// includes the scope and owner.UserID not already being an owner.
	AddOwner(ctx context.Context, scope Scope, owner Owner, now time.Time) (Task, error)
	DeleteTask(ctx context.Context, scope Scope) error
}

// UserDirectory resolves assignment targets.
type UserDirectory interface {
	FindUserByEmail(ctx context.Context, email string) (*auth.User, error)
}
