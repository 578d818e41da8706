package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Revoke upserts with $setOnInsert so a second revoke of the same key keeps
// the first record untouched.
func (s *Store) Revoke(ctx context.Context, key string, expiresAt time.Time) error {
	_, err := s.revoked.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		bson.D{{Key: "$setOnInsert", Value: bson.D{
			{Key: "expiresAt", Value: expiresAt.UTC()},
			{Key: "createdAt", Value: time.Now().UTC()},
		}}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (s *Store) IsRevoked(ctx context.Context, key string) (bool, error) {
	n, err := s.revoked.CountDocuments(ctx, bson.D{{Key: "_id", Value: key}}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PruneRevoked removes expired records. The TTL monitor does the same in the
// background but only runs about once a minute.
func (s *Store) PruneRevoked(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.revoked.DeleteMany(ctx, expiredFilter(now))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func expiredFilter(now time.Time) bson.D {
	return bson.D{{Key: "expiresAt", Value: bson.D{{Key: "$lte", Value: now.UTC()}}}}
}
