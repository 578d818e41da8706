package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"tasklane.dev/internal/auth"
	"tasklane.dev/internal/config"
	"tasklane.dev/internal/httpapi"
	"tasklane.dev/internal/obs"
	"tasklane.dev/internal/store"
	"tasklane.dev/internal/tasks"
)

var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		obs.Logger().Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var envFile, addr string
	flags := pflag.NewFlagSet("tasklane-api", pflag.ContinueOnError)
	flags.StringVar(&envFile, "env-file", "", "load environment from this file instead of ./.env")
	flags.StringVar(&addr, "addr", "", "listen address, overrides HOST and PORT")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := obs.NewLogger(os.Stdout, obs.ParseLevel(cfg.LogLevel))
	obs.SetLogger(logger)
	obs.Init()
	obs.InitBuildInfo(version, cfg.Store.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	backend, err := store.Open(openCtx, cfg.Store, logger)
	cancel()
	if err != nil {
		return err
	}
	defer backend.Close()

	tokens, err := auth.NewTokenService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret,
		auth.WithIssuer(cfg.JWT.Issuer),
		auth.WithAccessTTL(cfg.JWT.AccessTTL),
		auth.WithRefreshTTL(cfg.JWT.RefreshTTL),
	)
	if err != nil {
		return err
	}
	hasher, err := auth.NewHasher(cfg.Auth.BcryptCost, 0)
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(backend.Users, backend.Revocations, tokens,
		auth.WithHasher(hasher),
		auth.WithRoleSource(cfg.Auth.RoleSource),
		auth.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	taskSvc := tasks.NewService(backend.Tasks, backend.Users, tasks.WithLogger(logger))

	api := httpapi.New(authSvc, taskSvc, backend, httpapi.Options{
		Prefix:         cfg.Server.APIPrefix,
		Version:        version,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		Logger:         logger,
	})

	go auth.NewJanitor(backend.Revocations, cfg.Auth.PruneInterval, logger).Run(ctx)

	if addr == "" {
		addr = cfg.Server.Addr()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_start", "version", version, "addr", addr, "store", backend.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server_stopped")
	return nil
}
