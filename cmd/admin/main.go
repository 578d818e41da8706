// Command admin performs operator tasks against the configured store.
//
//	admin promote --email alice@example.com [--role admin|user]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"tasklane.dev/internal/auth"
	"tasklane.dev/internal/config"
	"tasklane.dev/internal/obs"
	"tasklane.dev/internal/store"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin promote --email <email> [--role admin|user] [--env-file path]")
}

func run(args []string) error {
	if len(args) == 0 || args[0] != "promote" {
		usage()
		return errors.New("unknown or missing command")
	}

	var email, role, envFile string
	flags := pflag.NewFlagSet("admin promote", pflag.ContinueOnError)
	flags.StringVar(&email, "email", "", "email of the user to change")
	flags.StringVar(&role, "role", string(auth.RoleAdmin), "role to set (admin or user)")
	flags.StringVar(&envFile, "env-file", "", "load environment from this file instead of ./.env")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}
	if email == "" {
		usage()
		return errors.New("--email is required")
	}
	r, ok := auth.ParseRole(role)
	if !ok {
		return fmt.Errorf("unknown role %q", role)
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := obs.NewLogger(os.Stderr, obs.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	tokens, err := auth.NewTokenService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)
	if err != nil {
		return err
	}
	svc, err := auth.NewService(backend.Users, backend.Revocations, tokens, auth.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := svc.PromoteUser(ctx, email, r); err != nil {
		return fmt.Errorf("promote %s: %w", email, err)
	}
	fmt.Printf("%s is now %s (token role source picks it up at next login)\n", auth.NormalizeEmail(email), r)
	return nil
}
