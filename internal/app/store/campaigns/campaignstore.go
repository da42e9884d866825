// internal/app/store/campaigns/campaignstore.go
package campaignstore

import (
	"context"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("campaigns"), now: time.Now}
}

// Create derives the status from the date window and inserts c.
func (s *Store) Create(ctx context.Context, c models.Campaign) (models.Campaign, error) {
	now := s.now().UTC()
	c.ID = primitive.NewObjectID()
	c.Name = normalize.Name(c.Name)
	if c.GroupIDs == nil {
		c.GroupIDs = []primitive.ObjectID{}
	}
	c.StartDate = c.StartDate.UTC()
	c.EndDate = c.EndDate.UTC()
	c.Status = models.CampaignStatus(now, c.StartDate, c.EndDate)
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Campaign{}, err
	}
	return c, nil
}

// ListByClient returns the client's campaigns newest first.
func (s *Store) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.Campaign, error) {
	cur, err := s.c.Find(ctx, bson.M{"client_id": clientID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Campaign{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetForClient(ctx context.Context, clientID, id primitive.ObjectID) (models.Campaign, error) {
	var c models.Campaign
	err := s.c.FindOne(ctx, bson.M{"_id": id, "client_id": clientID}).Decode(&c)
	return c, err
}

// Save recomputes the status and replaces the stored campaign. It returns
// mongo.ErrNoDocuments when the campaign is not c.ClientID's.
func (s *Store) Save(ctx context.Context, c models.Campaign) (models.Campaign, error) {
	now := s.now().UTC()
	c.Name = normalize.Name(c.Name)
	c.StartDate = c.StartDate.UTC()
	c.EndDate = c.EndDate.UTC()
	c.RefreshStatus(now)
	c.UpdatedAt = now
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": c.ID, "client_id": c.ClientID}, c)
	if err != nil {
		return models.Campaign{}, err
	}
	if res.MatchedCount == 0 {
		return models.Campaign{}, mongo.ErrNoDocuments
	}
	return c, nil
}

// SetGroups replaces the campaign's groups with ids.
func (s *Store) SetGroups(ctx context.Context, clientID, id primitive.ObjectID, ids []primitive.ObjectID) (models.Campaign, error) {
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	var c models.Campaign
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id, "client_id": clientID}, bson.M{
		"$set": bson.M{"group_ids": ids, "updated_at": s.now().UTC()},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&c)
	return c, err
}

// SetStatus writes a recomputed status back.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status}})
	return err
}

// SweepStatuses rewrites every stale stored status against now and returns
// how many campaigns changed.
func (s *Store) SweepStatuses(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	activate, err := s.c.UpdateMany(ctx, bson.M{
		"status":     bson.M{"$ne": models.CampaignActive},
		"start_date": bson.M{"$lte": now},
		"end_date":   bson.M{"$gte": now},
	}, bson.M{"$set": bson.M{"status": models.CampaignActive}})
	if err != nil {
		return 0, err
	}
	expire, err := s.c.UpdateMany(ctx, bson.M{
		"status": bson.M{"$ne": models.CampaignExpired},
		"$or": bson.A{
			bson.M{"start_date": bson.M{"$gt": now}},
			bson.M{"end_date": bson.M{"$lt": now}},
		},
	}, bson.M{"$set": bson.M{"status": models.CampaignExpired}})
	if err != nil {
		return activate.ModifiedCount, err
	}
	return activate.ModifiedCount + expire.ModifiedCount, nil
}

// Delete removes the client's campaign. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, clientID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "client_id": clientID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
