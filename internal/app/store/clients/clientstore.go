// internal/app/store/clients/clientstore.go
package clientstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/app/system/search"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateEmail = errors.New("a client with this email already exists")

// withoutPassword is the projection used for every read returned to callers.
var withoutPassword = bson.M{"password": 0}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("clients")}
}

// Create inserts c with a fresh ID, a lowercased email and UTC timestamps.
func (s *Store) Create(ctx context.Context, c models.Client) (models.Client, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Email = normalize.Email(c.Email)
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Client{}, ErrDuplicateEmail
		}
		return models.Client{}, err
	}
	return c, nil
}

// GetByID returns the client without its password hash.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Client, error) {
	var c models.Client
	err := s.c.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutPassword)).Decode(&c)
	return c, err
}

// GetByEmail returns the client including its password hash, for login.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Client, error) {
	var c models.Client
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&c)
	return c, err
}

// EmailExists reports whether any client uses email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"email": normalize.Email(email)}, options.Count().SetLimit(1))
	return n > 0, err
}

// RegistrationTaken reports whether another client already uses any of the
// non-empty GST number, PAN or mobile number.
func (s *Store) RegistrationTaken(ctx context.Context, gst, pan, mobile string) (bool, error) {
	var or bson.A
	if gst != "" {
		or = append(or, bson.M{"gst_no": gst})
	}
	if pan != "" {
		or = append(or, bson.M{"pan_no": pan})
	}
	if mobile != "" {
		or = append(or, bson.M{"mobile_no": mobile})
	}
	if len(or) == 0 {
		return false, nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"$or": or}, options.Count().SetLimit(1))
	return n > 0, err
}

// List returns clients newest first, without password hashes. A non-blank
// q narrows to name or business name matches, and to email as well when q
// contains '@'.
func (s *Store) List(ctx context.Context, q string) ([]models.Client, error) {
	fields := []string{"name", "business_name"}
	if search.LooksLikeEmail(q) {
		fields = append(fields, "email")
	}
	cur, err := s.c.Find(ctx, search.Filter(q, fields...), options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(withoutPassword))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Client{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByIDs returns the clients with the given ids keyed by id.
func (s *Store) ByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Client, error) {
	out := make(map[primitive.ObjectID]models.Client, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().
		SetProjection(bson.M{"name": 1, "email": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var c models.Client
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, cur.Err()
}

// AccountUpdate lists the fields a client may change on itself. Nil fields
// are left as they are.
type AccountUpdate struct {
	Name     *string
	Email    *string
	Settings map[string]any
}

// UpdateAccount applies u and returns the updated client.
func (s *Store) UpdateAccount(ctx context.Context, id primitive.ObjectID, u AccountUpdate) (models.Client, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Name != nil {
		set["name"] = normalize.Name(*u.Name)
	}
	if u.Email != nil {
		set["email"] = normalize.Email(*u.Email)
	}
	if u.Settings != nil {
		set["settings"] = u.Settings
	}
	var c models.Client
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(withoutPassword),
	).Decode(&c)
	if err != nil && wafflemongo.IsDup(err) {
		return models.Client{}, ErrDuplicateEmail
	}
	return c, err
}

// SetApproved marks a client approved. It returns mongo.ErrNoDocuments when
// no client has id.
func (s *Store) SetApproved(ctx context.Context, id primitive.ObjectID) (models.Client, error) {
	var c models.Client
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_approved": true, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(withoutPassword),
	).Decode(&c)
	return c, err
}

// SetProfileCompleted writes the mirrored completion flag.
func (s *Store) SetProfileCompleted(ctx context.Context, id primitive.ObjectID, done bool) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"is_profile_completed": done,
		"updated_at":           time.Now().UTC(),
	}})
	return err
}

// LinkGoogle records the Google identity on an existing client.
func (s *Store) LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID, picture string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"google_id":      googleID,
		"google_picture": picture,
		"email_verified": true,
		"updated_at":     time.Now().UTC(),
	}})
	return err
}

// Delete removes a client by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
