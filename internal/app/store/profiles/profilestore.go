// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/system/paging"
	"github.com/dalemusser/voicedesk/internal/app/system/search"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

var ErrExists = errors.New("profile already exists for this client")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

func trimFields(p *models.Profile) {
	for _, f := range []*string{
		&p.BusinessName, &p.BusinessType, &p.ContactNumber, &p.ContactName,
		&p.Pincode, &p.City, &p.State, &p.Website, &p.Pancard, &p.GST,
		&p.AnnualTurnover, &p.Address,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// Create inserts p with the completion flag derived from its fields.
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	trimFields(&p)
	p.IsProfileCompleted = p.IsComplete()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, ErrExists
		}
		return models.Profile{}, err
	}
	return p, nil
}

func (s *Store) GetByClient(ctx context.Context, clientID primitive.ObjectID) (models.Profile, error) {
	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&p)
	return p, err
}

// Save recomputes completion and replaces the stored profile.
func (s *Store) Save(ctx context.Context, p models.Profile) (models.Profile, error) {
	trimFields(&p)
	p.IsProfileCompleted = p.IsComplete()
	p.UpdatedAt = time.Now().UTC()
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return models.Profile{}, err
	}
	if res.MatchedCount == 0 {
		return models.Profile{}, mongo.ErrNoDocuments
	}
	return p, nil
}

// DeleteByClient removes the client's profile. Returns the number deleted.
func (s *Store) DeleteByClient(ctx context.Context, clientID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"client_id": clientID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns one page of profiles, newest first, and the total matching
// count. q matches business name, contact name or business type,
// case-insensitively.
func (s *Store) List(ctx context.Context, q string, pg paging.Page) ([]models.Profile, int64, error) {
	filter := search.Filter(q, "business_name", "contact_name", "business_type")

	var (
		out   []models.Profile
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cur, err := s.c.Find(gctx, filter, pg.FindOptions("created_at"))
		if err != nil {
			return err
		}
		defer cur.Close(gctx)
		out = []models.Profile{}
		return cur.All(gctx, &out)
	})
	g.Go(func() error {
		n, err := s.c.CountDocuments(gctx, filter)
		total = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
