package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/auth"
	"tasklane.dev/internal/tasks"
)

func TestUsersUniqueEmail(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.CreateUser(ctx, &auth.User{ID: "u1", Email: "a@example.com", Role: auth.RoleUser}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	err := s.CreateUser(ctx, &auth.User{ID: "u2", Email: "a@example.com"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := s.FindUserByEmail(ctx, "b@example.com"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.SetUserRole(ctx, "a@example.com", auth.RoleAdmin); err != nil {
		t.Fatalf("SetUserRole: %v", err)
	}
	u, err := s.FindUserByID(ctx, "u1")
	if err != nil || u.Role != auth.RoleAdmin {
		t.Fatalf("unexpected user %+v, err=%v", u, err)
	}
}

func TestRevocationsIdempotentAndPruned(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	if err := s.Revoke(ctx, "k1", now.Add(-time.Second)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	// a second revoke keeps the first expiry
	if err := s.Revoke(ctx, "k1", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if err := s.Revoke(ctx, "k2", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	n, err := s.PruneRevoked(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 pruned, got %d (%v)", n, err)
	}
	if ok, _ := s.IsRevoked(ctx, "k1"); ok {
		t.Fatal("expected k1 pruned")
	}
	if ok, _ := s.IsRevoked(ctx, "k2"); !ok {
		t.Fatal("expected k2 still revoked")
	}
}

func seedTask(t *testing.T, s *Store, id string, owners ...string) {
	t.Helper()
	task := &tasks.Task{ID: id, Title: "task " + id, Difficulty: tasks.DifficultyEasy, Status: tasks.StatusInProgress}
	for _, o := range owners {
		task.Owners = append(task.Owners, tasks.Owner{UserID: o, Email: o + "@example.com"})
	}
	if err := s.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
}

func TestTaskScopes(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedTask(t, s, "t1", "alice")
	seedTask(t, s, "t2", "bob")

	list, err := s.ListTasks(ctx, tasks.Scope{OwnerID: "alice"})
	if err != nil || len(list) != 1 || list[0].ID != "t1" {
		t.Fatalf("unexpected owner list: %+v (%v)", list, err)
	}
	all, _ := s.ListTasks(ctx, tasks.Scope{})
	if len(all) != 2 {
		t.Fatalf("expected 2 tasks unscoped, got %d", len(all))
	}

	if _, err := s.GetTask(ctx, tasks.Scope{TaskID: "t2", OwnerID: "alice"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected scope miss to be not found, got %v", err)
	}
	if err := s.DeleteTask(ctx, tasks.Scope{TaskID: "t2", OwnerID: "alice"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected scoped delete to miss, got %v", err)
	}
	if err := s.DeleteTask(ctx, tasks.Scope{TaskID: "t2"}); err != nil {
		t.Fatalf("unscoped delete: %v", err)
	}
}

func TestReturnedTasksAreCopies(t *testing.T) {
	s := New()
	seedTask(t, s, "t1", "alice")
	got, _ := s.GetTask(context.Background(), tasks.Scope{TaskID: "t1"})
	got.Owners[0].UserID = "mallory"
	again, _ := s.GetTask(context.Background(), tasks.Scope{TaskID: "t1"})
	if again.Owners[0].UserID != "alice" {
		t.Fatal("caller mutated stored owners")
	}
}

func TestAddOwnerRejectsExistingOwner(t *testing.T) {
	s := New()
	seedTask(t, s, "t1", "alice")
	_, err := s.AddOwner(context.Background(), tasks.Scope{TaskID: "t1", OwnerID: "alice"}, tasks.Owner{UserID: "alice"}, time.Now())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected miss, got %v", err)
	}
	got, _ := s.GetTask(context.Background(), tasks.Scope{TaskID: "t1"})
	if len(got.Owners) != 1 {
		t.Fatalf("owners changed: %+v", got.Owners)
	}
}

func TestAddOwnerConcurrent(t *testing.T) {
	s := New()
	seedTask(t, s, "t1", "alice")

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		// each target is attempted twice at once; exactly one may win
		target := tasks.Owner{UserID: fmt.Sprintf("user-%d", i)}
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.AddOwner(context.Background(), tasks.Scope{TaskID: "t1", OwnerID: "alice"}, target, time.Now())
				errs <- err
			}()
		}
	}
	wg.Wait()
	close(errs)

	var ok, missed int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrNotFound):
			missed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != workers || missed != workers {
		t.Fatalf("expected %d wins and %d misses, got %d/%d", workers, workers, ok, missed)
	}

	got, _ := s.GetTask(context.Background(), tasks.Scope{TaskID: "t1"})
	if len(got.Owners) != workers+1 {
		t.Fatalf("expected %d owners, got %d", workers+1, len(got.Owners))
	}
	seen := map[string]bool{}
	for _, o := range got.Owners {
		if seen[o.UserID] {
			t.Fatalf("duplicate owner %s", o.UserID)
		}
		seen[o.UserID] = true
	}
}
