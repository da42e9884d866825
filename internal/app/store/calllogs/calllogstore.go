// internal/app/store/calllogs/calllogstore.go
package calllogstore

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
	return &Store{c: db.Collection("call_logs")}
}

// Create records a call. Lead status defaults to maybe and time to now.
func (s *Store) Create(ctx context.Context, l models.CallLog) (models.CallLog, error) {
	now := time.Now().UTC()
	l.ID = primitive.NewObjectID()
	if l.LeadStatus == "" {
		l.LeadStatus = models.LeadMaybe
	}
	if l.Time.IsZero() {
		l.Time = now
	}
	l.Time = l.Time.UTC()
	l.CreatedAt = now
	l.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.CallLog{}, err
	}
	return l, nil
}

// Find returns the client's call logs, newest first. A nil bound leaves that
// side of the time window open.
func (s *Store) Find(ctx context.Context, clientID primitive.ObjectID, start, end *time.Time) ([]models.CallLog, error) {
	filter := bson.M{"client_id": clientID}
	window := bson.M{}
	if start != nil {
		window["$gte"] = start.UTC()
	}
	if end != nil {
		window["$lte"] = end.UTC()
	}
	if len(window) > 0 {
		filter["time"] = window
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "time", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.CallLog{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
