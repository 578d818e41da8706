// Package store opens the persistence backend selected by configuration.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"tasklane.dev/internal/auth"
	"tasklane.dev/internal/config"
	"tasklane.dev/internal/migrate"
	"tasklane.dev/internal/store/memory"
	"tasklane.dev/internal/store/mongo"
	"tasklane.dev/internal/store/pg"
	"tasklane.dev/internal/tasks"
)

// Backend bundles the three stores of one driver. All of them are served by
// the same underlying connection.
type Backend struct {
	Driver      string
	Users       auth.UserStore
	Revocations auth.RevocationStore
	Tasks       tasks.Store

	ping  func(context.Context) error
	close func() error
}

// Ping checks the underlying connection.
func (b *Backend) Ping(ctx context.Context) error { return b.ping(ctx) }

func (b *Backend) Close() error { return b.close() }

type backend interface {
	auth.UserStore
	auth.RevocationStore
	tasks.Store
	Ping(context.Context) error
	Close() error
}

func newBackend(driver string, s backend) *Backend {
	return &Backend{
		Driver:      driver,
		Users:       s,
		Revocations: s,
		Tasks:       s,
		ping:        s.Ping,
		close:       s.Close,
	}
}

// Memory returns a fresh in-memory backend.
func Memory() *Backend { return newBackend(config.DriverMemory, memory.New()) }

// Open connects to the configured driver. For postgres it applies pending
// migrations first when MigrateOnStart is set.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("store_memory", "msg", "data is lost on restart")
		return Memory(), nil
	case config.DriverPostgres:
		s, err := pg.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.MigrateOnStart {
			if err := migrate.NewManager(s.DB()).Up(ctx); err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations_applied")
		}
		return newBackend(cfg.Driver, s), nil
	case config.DriverMongo:
		s, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		return newBackend(cfg.Driver, s), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
