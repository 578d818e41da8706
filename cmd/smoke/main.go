// Command smoke runs an end-to-end check against a running API:
// two users, one shared task, a duplicate assign, and logout revocation.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/client"
	"tasklane.dev/internal/ids"
)

func main() {
	log.SetFlags(0)
	base := os.Getenv("TASKLANE_API_URL")
	if base == "" {
		base = "http://localhost:3001/api"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := client.New(base)
	run := ids.New()
	ownerEmail := "smoke-owner-" + run + "@example.com"
	peerEmail := "smoke-peer-" + run + "@example.com"
	const password = "smoke-password"

	owner, err := c.Register(ctx, "Smoke Owner", ownerEmail, password)
	if err != nil {
		log.Fatalf("register owner: %v", err)
	}
	peer, err := c.Register(ctx, "Smoke Peer", peerEmail, password)
	if err != nil {
		log.Fatalf("register peer: %v", err)
	}
	oc := c.WithToken(owner.AccessToken)
	pc := c.WithToken(peer.AccessToken)

	task, err := oc.CreateTask(ctx, client.NewTask{Title: "smoke " + run[:8], Difficulty: "Easy"})
	if err != nil {
		log.Fatalf("create task: %v", err)
	}
	if _, err := pc.GetTask(ctx, task.ID); !errors.Is(err, apperr.ErrNotFound) {
		log.Fatalf("peer read before assign: want 404, got %v", err)
	}

	task, err = oc.AssignTask(ctx, task.ID, peerEmail)
	if err != nil {
		log.Fatalf("assign: %v", err)
	}
	if len(task.Owners) != 2 {
		log.Fatalf("assign: want 2 owners, got %d", len(task.Owners))
	}
	if _, err := oc.AssignTask(ctx, task.ID, peerEmail); !errors.Is(err, apperr.ErrBadRequest) {
		log.Fatalf("duplicate assign: want 400, got %v", err)
	}
	if _, err := pc.GetTask(ctx, task.ID); err != nil {
		log.Fatalf("peer read after assign: %v", err)
	}

	if err := oc.DeleteTask(ctx, task.ID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	if err := oc.Logout(ctx); err != nil {
		log.Fatalf("logout: %v", err)
	}
	if _, err := oc.ListTasks(ctx); !errors.Is(err, apperr.ErrUnauthorized) {
		log.Fatalf("revoked token: want 401, got %v", err)
	}

	fmt.Printf("smoke test passed: task=%s owners=%s,%s\n", task.ID, owner.User.ID, peer.User.ID)
}
