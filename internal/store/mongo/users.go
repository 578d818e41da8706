package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/auth"
)

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	_, err := s.users.InsertOne(ctx, newUserDoc(u))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: email %s", apperr.ErrConflict, u.Email)
	}
	return err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findUser(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*auth.User, error) {
	return s.findUser(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *Store) findUser(ctx context.Context, filter bson.D) (*auth.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.user(), nil
}

func (s *Store) SetRefreshTokenHash(ctx context.Context, userID, hash string) error {
	return s.setUserField(ctx, bson.D{{Key: "_id", Value: userID}}, "refreshTokenHash", hash)
}

func (s *Store) SetUserRole(ctx context.Context, email string, role auth.Role) error {
	return s.setUserField(ctx, bson.D{{Key: "email", Value: email}}, "role", string(role))
}

func (s *Store) setUserField(ctx context.Context, filter bson.D, field string, value any) error {
	res, err := s.users.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: bson.D{{Key: field, Value: value}}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
