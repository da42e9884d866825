// internal/app/store/groups/groupstore.go
package groupstore

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
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func normalizeContact(ct *models.Contact, now time.Time) {
	if ct.ID.IsZero() {
		ct.ID = primitive.NewObjectID()
	}
	ct.Name = normalize.Name(ct.Name)
	ct.Phone = normalize.Phone(ct.Phone)
	ct.Email = normalize.Email(ct.Email)
	if ct.CreatedAt.IsZero() {
		ct.CreatedAt = now
	}
}

func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.Name = normalize.Name(g.Name)
	if g.Contacts == nil {
		g.Contacts = []models.Contact{}
	}
	for i := range g.Contacts {
		normalizeContact(&g.Contacts[i], now)
	}
	if g.AgentIDs == nil {
		g.AgentIDs = []primitive.ObjectID{}
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// ListByClient returns the client's groups newest first.
func (s *Store) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"client_id": clientID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Group{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetForClient(ctx context.Context, clientID, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"_id": id, "client_id": clientID}).Decode(&g)
	return g, err
}

// Update lists the mutable group fields. Nil fields are left as they are.
type Update struct {
	Name        *string
	Description *string
	Contacts    []models.Contact
	AgentIDs    []primitive.ObjectID
}

func (s *Store) Update(ctx context.Context, clientID, id primitive.ObjectID, u Update) (models.Group, error) {
	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	if u.Name != nil {
		set["name"] = normalize.Name(*u.Name)
	}
	if u.Description != nil {
		// Description can be cleared.
		set["description"] = *u.Description
	}
	if u.Contacts != nil {
		for i := range u.Contacts {
			normalizeContact(&u.Contacts[i], now)
		}
		set["contacts"] = u.Contacts
	}
	if u.AgentIDs != nil {
		set["agent_ids"] = u.AgentIDs
	}
	var g models.Group
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id, "client_id": clientID}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&g)
	return g, err
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, clientID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "client_id": clientID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AddContact appends ct to the group and returns the stored contact.
func (s *Store) AddContact(ctx context.Context, clientID, id primitive.ObjectID, ct models.Contact) (models.Contact, error) {
	now := time.Now().UTC()
	ct.ID = primitive.NewObjectID()
	ct.CreatedAt = now
	normalizeContact(&ct, now)
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "client_id": clientID}, bson.M{
		"$push": bson.M{"contacts": ct},
		"$set":  bson.M{"updated_at": now},
	})
	if err != nil {
		return models.Contact{}, err
	}
	if res.MatchedCount == 0 {
		return models.Contact{}, mongo.ErrNoDocuments
	}
	return ct, nil
}

// AddContacts appends cts in one write and returns them as stored.
func (s *Store) AddContacts(ctx context.Context, clientID, id primitive.ObjectID, cts []models.Contact) ([]models.Contact, error) {
	now := time.Now().UTC()
	for i := range cts {
		cts[i].ID = primitive.NewObjectID()
		cts[i].CreatedAt = now
		normalizeContact(&cts[i], now)
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "client_id": clientID}, bson.M{
		"$push": bson.M{"contacts": bson.M{"$each": cts}},
		"$set":  bson.M{"updated_at": now},
	})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return cts, nil
}

// DeleteContact pulls one contact. It returns mongo.ErrNoDocuments when the
// group is not the client's.
func (s *Store) DeleteContact(ctx context.Context, clientID, id, contactID primitive.ObjectID) (models.Group, error) {
	var g models.Group
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id, "client_id": clientID}, bson.M{
		"$pull": bson.M{"contacts": bson.M{"_id": contactID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&g)
	return g, err
}

// CountOwned returns how many of ids are groups owned by clientID.
func (s *Store) CountOwned(ctx context.Context, clientID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{"client_id": clientID, "_id": bson.M{"$in": ids}})
}

// Summaries returns the named groups keyed by id, for populating campaigns.
// Contacts are included only when withContacts is set.
func (s *Store) Summaries(ctx context.Context, ids []primitive.ObjectID, withContacts bool) (map[primitive.ObjectID]models.GroupSummary, error) {
	out := make(map[primitive.ObjectID]models.GroupSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	proj := bson.M{"name": 1, "description": 1}
	if withContacts {
		proj["contacts"] = 1
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(proj))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var g models.GroupSummary
		if err := cur.Decode(&g); err != nil {
			return nil, err
		}
		out[g.ID] = g
	}
	return out, cur.Err()
}
