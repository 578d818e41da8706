package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"tasklane.dev/internal/config"
)

func TestOpenMemory(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	b, err := Open(context.Background(), config.StoreConfig{Driver: config.DriverMemory}, logger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()
	if b.Users == nil || b.Revocations == nil || b.Tasks == nil {
		t.Fatalf("expected all stores set, got %+v", b)
	}
	if err := b.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if _, err := Open(context.Background(), config.StoreConfig{Driver: "sqlite"}, logger); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
