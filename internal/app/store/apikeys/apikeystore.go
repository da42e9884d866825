// internal/app/store/apikeys/apikeystore.go
package apikeystore

import (
	"context"
	"time"

	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("client_api_keys")}
}

// Upsert stores the sealed key for (clientID, provider), replacing any earlier
// key and clearing its test result.
func (s *Store) Upsert(ctx context.Context, clientID primitive.ObjectID, provider string, sealed []byte, hint string, cfg map[string]any) (models.ClientAPIKey, error) {
	now := time.Now().UTC()
	set := bson.M{
		"sealed_key": sealed,
		"key_hint":   hint,
		"updated_at": now,
	}
	if cfg != nil {
		set["configuration"] = cfg
	}
	var k models.ClientAPIKey
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"client_id": clientID, "provider": provider},
		bson.M{
			"$set":   set,
			"$unset": bson.M{"last_tested_at": "", "last_test_ok": ""},
			"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"created_at": now,
			},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&k)
	return k, err
}

// ListByClient returns the client's keys sorted by provider.
func (s *Store) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.ClientAPIKey, error) {
	cur, err := s.c.Find(ctx, bson.M{"client_id": clientID},
		options.Find().SetSort(bson.D{{Key: "provider", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.ClientAPIKey{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, clientID primitive.ObjectID, provider string) (models.ClientAPIKey, error) {
	var k models.ClientAPIKey
	err := s.c.FindOne(ctx, bson.M{"client_id": clientID, "provider": provider}).Decode(&k)
	return k, err
}

// RecordTest stores the outcome of a connectivity test.
func (s *Store) RecordTest(ctx context.Context, id primitive.ObjectID, ok bool) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"last_tested_at": time.Now().UTC(),
		"last_test_ok":   ok,
	}})
	return err
}

// Delete removes the client's key for provider. Returns the number deleted.
func (s *Store) Delete(ctx context.Context, clientID primitive.ObjectID, provider string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"client_id": clientID, "provider": provider})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
