// Package memory is a process-local store for development and tests. It keeps
// the same contracts as the database backends, including the atomic
// add-owner write.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/auth"
	"tasklane.dev/internal/tasks"
)

var (
	_ auth.UserStore       = (*Store)(nil)
	_ auth.RevocationStore = (*Store)(nil)
	_ tasks.Store          = (*Store)(nil)
)

// Store holds users, revoked tokens and tasks behind one RWMutex.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*auth.User // by id
	byEmail map[string]string     // email -> id
	revoked map[string]time.Time  // key -> token expiry
	tasks   map[string]*tasks.Task
}

func New() *Store {
	return &Store{
		users:   make(map[string]*auth.User),
		byEmail: make(map[string]string),
		revoked: make(map[string]time.Time),
		tasks:   make(map[string]*tasks.Task),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// --- users ---

func (s *Store) CreateUser(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return fmt.Errorf("%w: email %s", apperr.ErrConflict, u.Email)
	}
	cp := *u
	s.users[u.ID] = &cp
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *Store) FindUserByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) SetRefreshTokenHash(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	u.RefreshTokenHash = hash
	return nil
}

func (s *Store) SetUserRole(_ context.Context, email string, role auth.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return apperr.ErrNotFound
	}
	s.users[id].Role = role
	return nil
}

// --- revocations ---

func (s *Store) Revoke(_ context.Context, key string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[key]; !ok {
		s.revoked[key] = expiresAt
	}
	return nil
}

func (s *Store) IsRevoked(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[key]
	return ok, nil
}

func (s *Store) PruneRevoked(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, key)
			n++
		}
	}
	return n, nil
}

// --- tasks ---

func (s *Store) CreateTask(_ context.Context, t *tasks.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; ok {
		return fmt.Errorf("%w: task %s", apperr.ErrConflict, t.ID)
	}
	s.tasks[t.ID] = cloneTask(t)
	return nil
}

// ListTasks returns matching tasks, newest first.
func (s *Store) ListTasks(_ context.Context, scope tasks.Scope) ([]tasks.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]tasks.Task, 0)
	for _, t := range s.tasks {
		if scope.Matches(*t) {
			out = append(out, *cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) GetTask(_ context.Context, scope tasks.Scope) (tasks.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.lookup(scope)
	if !ok {
		return tasks.Task{}, apperr.ErrNotFound
	}
	return *cloneTask(t), nil
}

func (s *Store) UpdateTask(_ context.Context, scope tasks.Scope, p tasks.Patch, now time.Time) (tasks.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lookup(scope)
	if !ok {
		return tasks.Task{}, apperr.ErrNotFound
	}
	p.Apply(t)
	t.UpdatedAt = now
	return *cloneTask(t), nil
}

func (s *Store) AddOwner(_ context.Context, scope tasks.Scope, owner tasks.Owner, now time.Time) (tasks.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[scope.TaskID]
	if !ok || !scope.AdmitsOwner(*t, owner.UserID) {
		return tasks.Task{}, apperr.ErrNotFound
	}
	t.Owners = append(t.Owners, owner)
	t.UpdatedAt = now
	return *cloneTask(t), nil
}

func (s *Store) DeleteTask(_ context.Context, scope tasks.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lookup(scope)
	if !ok {
		return apperr.ErrNotFound
	}
	delete(s.tasks, t.ID)
	return nil
}

// lookup requires s.mu to be held.
func (s *Store) lookup(scope tasks.Scope) (*tasks.Task, bool) {
	if scope.TaskID == "" {
		return nil, false
	}
	t, ok := s.tasks[scope.TaskID]
	if !ok || !scope.Matches(*t) {
		return nil, false
	}
	return t, true
}

func cloneTask(t *tasks.Task) *tasks.Task {
	cp := *t
	cp.Owners = append([]tasks.Owner(nil), t.Owners...)
	if t.Deadline != nil {
		d := *t.Deadline
		cp.Deadline = &d
	}
	return &cp
}
