// Package mongo implements the user, revocation and task stores on MongoDB.
// Task ids and user ids are ULID strings stored as _id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/auth"
	"tasklane.dev/internal/tasks"
)

const (
	usersCollection   = "users"
	revokedCollection = "revoked_tokens"
	tasksCollection   = "tasks"
)

var (
	_ auth.UserStore       = (*Store)(nil)
	_ auth.RevocationStore = (*Store)(nil)
	_ tasks.Store          = (*Store)(nil)
)

type Store struct {
	client  *mongo.Client
	users   *mongo.Collection
	revoked *mongo.Collection
	tasks   *mongo.Collection
}

// Open connects, pings the primary and ensures the indexes exist.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	s := New(client, database)
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:  client,
		users:   db.Collection(usersCollection),
		revoked: db.Collection(revokedCollection),
		tasks:   db.Collection(tasksCollection),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique email index, the owner lookup index and the
// TTL index that lets the server drop revocations once they expire.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := s.revoked.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("revoked_tokens_ttl"),
	}); err != nil {
		return fmt.Errorf("revoked_tokens index: %w", err)
	}
	if _, err := s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owners.userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("tasks_owner_created"),
	}); err != nil {
		return fmt.Errorf("tasks index: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.ErrNotFound
	}
	return err
}
