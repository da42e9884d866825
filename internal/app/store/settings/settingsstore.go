// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"time"

	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the agent_settings collection.
// Each client has at most one settings document.
type Store struct {
	c *mongo.Collection
}

// New creates a new settings store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("agent_settings")}
}

// Get returns the inbound settings for a client.
// If none have been saved, it returns an empty settings document.
func (s *Store) Get(ctx context.Context, clientID primitive.ObjectID) (models.AgentSettings, error) {
	var settings models.AgentSettings
	err := s.c.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return models.AgentSettings{ClientID: clientID, Settings: map[string]any{}}, nil
	}
	if err != nil {
		return models.AgentSettings{}, err
	}
	if settings.Settings == nil {
		settings.Settings = map[string]any{}
	}
	return settings, nil
}

// Save replaces the client's settings map, creating the document on first use.
func (s *Store) Save(ctx context.Context, clientID primitive.ObjectID, settings map[string]any) (models.AgentSettings, error) {
	now := time.Now().UTC()
	if settings == nil {
		settings = map[string]any{}
	}
	update := bson.M{
		"$set": bson.M{
			"settings":   settings,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"client_id":  clientID,
			"created_at": now,
		},
	}
	var out models.AgentSettings
	err := s.c.FindOneAndUpdate(ctx, bson.M{"client_id": clientID}, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	return out, err
}

// Delete removes settings for a client.
func (s *Store) Delete(ctx context.Context, clientID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"client_id": clientID})
	return err
}
