package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/auth"
	"tasklane.dev/internal/ids"
	"tasklane.dev/internal/obs"
)

var (
	ErrTaskNotFound = fmt.Errorf("%w: Task not found", apperr.ErrNotFound)
	// ErrAssignmentFailed covers an unknown target, a target that already owns
	// the task and a task outside the requester's scope alike.
	ErrAssignmentFailed = fmt.Errorf("%w: assignment failed", apperr.ErrBadRequest)
)

// Service applies the ownership policy to task operations.
type Service struct {
	store  Store
	users  UserDirectory
	now    func() time.Time
	logger *slog.Logger
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithLogger sets the logger used for storage faults.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(store Store, users UserDirectory, opts ...Option) *Service {
	s := &Service{store: store, users: users, now: time.Now, logger: obs.Logger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, req auth.Identity) ([]Task, error) {
	list, err := s.store.ListTasks(ctx, ScopeFor(req, OpList, ""))
	if err != nil {
		return nil, s.storeErr("list", err)
	}
	if list == nil {
		list = []Task{}
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, req auth.Identity, id string) (Task, error) {
	if !ids.Valid(id) {
		return Task{}, ErrTaskNotFound
	}
	t, err := s.store.GetTask(ctx, ScopeFor(req, OpRead, id))
	if err != nil {
		return Task{}, s.storeErr("get", err)
	}
	return t, nil
}

// Create stores a new task with the requester as its only owner.
func (s *Service) Create(ctx context.Context, req auth.Identity, in CreateInput) (Task, error) {
	if err := in.Validate(); err != nil {
		return Task{}, err
	}
	now := s.now().UTC()
	t := Task{
		ID:          ids.New(),
		Title:       in.Title,
		Description: in.Description,
		Difficulty:  in.Difficulty,
		Status:      in.Status,
		Owners:      []Owner{{UserID: req.ID, Name: req.Name, Email: req.Email}},
		Comment:     in.Comment,
		Deadline:    in.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTask(ctx, &t); err != nil {
		return Task{}, s.storeErr("create", err)
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, req auth.Identity, id string, p Patch) (Task, error) {
	if err := p.Validate(); err != nil {
		return Task{}, err
	}
	if !ids.Valid(id) {
		return Task{}, ErrTaskNotFound
	}
	t, err := s.store.UpdateTask(ctx, ScopeFor(req, OpUpdate, id), p, s.now().UTC())
	if err != nil {
		return Task{}, s.storeErr("update", err)
	}
	return t, nil
}

// Assign adds the user registered under email to the task's owners.
func (s *Service) Assign(ctx context.Context, req auth.Identity, id, email string) (Task, error) {
	email = auth.NormalizeEmail(email)
	if email == "" {
		return Task{}, badRequest("email is required")
	}
	if !ids.Valid(id) {
		return Task{}, ErrAssignmentFailed
	}
	target, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Task{}, ErrAssignmentFailed
		}
		return Task{}, s.storeErr("resolve assignee", err)
	}
	owner := Owner{UserID: target.ID, Name: target.Name, Email: target.Email}
	t, err := s.store.AddOwner(ctx, ScopeFor(req, OpAssign, id), owner, s.now().UTC())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Task{}, ErrAssignmentFailed
		}
		return Task{}, s.storeErr("assign", err)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, req auth.Identity, id string) error {
	if !ids.Valid(id) {
		return ErrTaskNotFound
	}
	if err := s.store.DeleteTask(ctx, ScopeFor(req, OpDelete, id)); err != nil {
		return s.storeErr("delete", err)
	}
	return nil
}

func (s *Service) storeErr(op string, err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return ErrTaskNotFound
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Error("task "+op, "error", err)
	return fmt.Errorf("task %s: %w", op, apperr.ErrInternal)
}
