package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"tasklane.dev/internal/migrate/migrations"
)

const defaultMigrationsTable = "schema_migrations"

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// seams for tests
var (
	gooseUp      = goose.UpContext
	gooseDown    = goose.DownContext
	gooseVersion = goose.GetDBVersionContext
)

// Manager applies the embedded SQL migrations with goose.
type Manager struct {
	db              *sql.DB
	migrationsTable string
}

// Option configures Manager.
type Option func(*Manager)

// WithMigrationsTable overrides the default migrations bookkeeping table.
func WithMigrationsTable(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.migrationsTable = name
		}
	}
}

// NewManager constructs a Manager.
func NewManager(db *sql.DB, opts ...Option) *Manager {
	m := &Manager{db: db, migrationsTable: defaultMigrationsTable}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Up applies all pending migrations.
func (m *Manager) Up(ctx context.Context) error {
	return m.run(func() error { return gooseUp(ctx, m.db, ".") })
}

// Down rolls back the most recent applied migration.
func (m *Manager) Down(ctx context.Context) error {
	return m.run(func() error { return gooseDown(ctx, m.db, ".") })
}

// Status returns one line per known migration with its applied state.
func (m *Manager) Status(ctx context.Context) ([]string, error) {
	var lines []string
	err := m.run(func() error {
		current, err := gooseVersion(ctx, m.db)
		if err != nil {
			return err
		}
		known, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
		if err != nil {
			return err
		}
		for _, mig := range known {
			state := "pending"
			if mig.Version <= current {
				state = "applied"
			}
			lines = append(lines, fmt.Sprintf("%05d %s %s", mig.Version, state, mig.Source))
		}
		return nil
	})
	return lines, err
}

func (m *Manager) run(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(m.migrationsTable)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return fn()
}
