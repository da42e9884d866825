// internal/app/store/agents/agentstore.go
package agentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateName = errors.New("an agent with this name already exists")

// withoutAudio keeps the base64 clip out of listing and detail reads.
var withoutAudio = bson.M{"audio_bytes": 0}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("agents")}
}

// Create applies defaults, stamps timestamps and inserts a.
func (s *Store) Create(ctx context.Context, a models.Agent) (models.Agent, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.AgentName = normalize.Name(a.AgentName)
	a.ApplyDefaults()
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Agent{}, ErrDuplicateName
		}
		return models.Agent{}, err
	}
	return a, nil
}

// ListByClient returns the client's agents newest first, without audio.
func (s *Store) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.Agent, error) {
	cur, err := s.c.Find(ctx, bson.M{"client_id": clientID}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(withoutAudio))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Agent{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetForClient returns the client's agent without audio.
func (s *Store) GetForClient(ctx context.Context, clientID, id primitive.ObjectID) (models.Agent, error) {
	var a models.Agent
	err := s.c.FindOne(ctx, bson.M{"_id": id, "client_id": clientID},
		options.FindOne().SetProjection(withoutAudio)).Decode(&a)
	return a, err
}

// GetFull returns the client's agent including audio, for read-modify-write.
func (s *Store) GetFull(ctx context.Context, clientID, id primitive.ObjectID) (models.Agent, error) {
	var a models.Agent
	err := s.c.FindOne(ctx, bson.M{"_id": id, "client_id": clientID}).Decode(&a)
	return a, err
}

// GetAudio returns the stored base64 clip. It returns an empty string when the
// agent exists but has no audio.
func (s *Store) GetAudio(ctx context.Context, clientID, id primitive.ObjectID) (string, error) {
	var doc struct {
		AudioBytes string `bson:"audio_bytes"`
	}
	err := s.c.FindOne(ctx, bson.M{"_id": id, "client_id": clientID},
		options.FindOne().SetProjection(bson.M{"audio_bytes": 1})).Decode(&doc)
	return doc.AudioBytes, err
}

// Save replaces the stored agent with a after re-applying defaults. It
// returns mongo.ErrNoDocuments when the agent does not belong to a.ClientID.
func (s *Store) Save(ctx context.Context, a models.Agent) (models.Agent, error) {
	a.AgentName = normalize.Name(a.AgentName)
	a.ApplyDefaults()
	a.UpdatedAt = time.Now().UTC()
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": a.ID, "client_id": a.ClientID}, a)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Agent{}, ErrDuplicateName
		}
		return models.Agent{}, err
	}
	if res.MatchedCount == 0 {
		return models.Agent{}, mongo.ErrNoDocuments
	}
	return a, nil
}

// MessageUpdate carries the fields the mobile client may change.
type MessageUpdate struct {
	FirstMessage   *string
	VoiceSelection *string
	Append         []models.StartingMessage
}

// AppendMessages sets the optional fields and appends new starting messages.
func (s *Store) AppendMessages(ctx context.Context, clientID, id primitive.ObjectID, u MessageUpdate) (models.Agent, error) {
	update := bson.M{}
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.FirstMessage != nil {
		set["first_message"] = *u.FirstMessage
	}
	if u.VoiceSelection != nil {
		set["voice_selection"] = *u.VoiceSelection
	}
	update["$set"] = set
	if len(u.Append) > 0 {
		update["$push"] = bson.M{"starting_messages": bson.M{"$each": u.Append}}
	}
	var a models.Agent
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id, "client_id": clientID}, update,
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(withoutAudio),
	).Decode(&a)
	return a, err
}

// Delete removes the client's agent. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, clientID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "client_id": clientID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountOwned returns how many of ids are agents owned by clientID.
func (s *Store) CountOwned(ctx context.Context, clientID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{"client_id": clientID, "_id": bson.M{"$in": ids}})
}
