// internal/app/store/businessinfo/businessinfostore.go
package businessinfostore

import (
	"context"
	"strings"
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
	return &Store{c: db.Collection("business_info")}
}

func (s *Store) Create(ctx context.Context, clientID primitive.ObjectID, text string) (models.BusinessInfo, error) {
	now := time.Now().UTC()
	b := models.BusinessInfo{
		ID:        primitive.NewObjectID(),
		ClientID:  clientID,
		Text:      strings.TrimSpace(text),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.BusinessInfo{}, err
	}
	return b, nil
}

func (s *Store) GetForClient(ctx context.Context, clientID, id primitive.ObjectID) (models.BusinessInfo, error) {
	var b models.BusinessInfo
	err := s.c.FindOne(ctx, bson.M{"_id": id, "client_id": clientID}).Decode(&b)
	return b, err
}

// UpdateText replaces the text and returns the updated document.
func (s *Store) UpdateText(ctx context.Context, clientID, id primitive.ObjectID, text string) (models.BusinessInfo, error) {
	var b models.BusinessInfo
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id, "client_id": clientID},
		bson.M{"$set": bson.M{"text": strings.TrimSpace(text), "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	return b, err
}
