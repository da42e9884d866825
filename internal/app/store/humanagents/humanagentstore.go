// internal/app/store/humanagents/humanagentstore.go
package humanagentstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateName  = errors.New("a human agent with this name already exists for this client")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("human_agents")}
}

// dupErr maps a duplicate-key error to the sentinel for the index it hit.
func dupErr(err error) error {
	if !wafflemongo.IsDup(err) {
		return err
	}
	if strings.Contains(err.Error(), "uniq_human_agents_email") {
		return ErrDuplicateEmail
	}
	return ErrDuplicateName
}

func (s *Store) Create(ctx context.Context, h models.HumanAgent) (models.HumanAgent, error) {
	now := time.Now().UTC()
	h.ID = primitive.NewObjectID()
	h.HumanAgentName = normalize.Name(h.HumanAgentName)
	h.Email = normalize.Email(h.Email)
	h.MobileNumber = strings.TrimSpace(h.MobileNumber)
	h.DID = strings.TrimSpace(h.DID)
	if h.AgentIDs == nil {
		h.AgentIDs = []primitive.ObjectID{}
	}
	h.CreatedAt = now
	h.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, h); err != nil {
		return models.HumanAgent{}, dupErr(err)
	}
	return h, nil
}

// ListByClient returns the client's human agents newest first, with agent
// names and descriptions populated.
func (s *Store) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.HumanAgentView, error) {
	return s.views(ctx, bson.M{"client_id": clientID})
}

// GetView is GetForClient with the agent references populated.
func (s *Store) GetView(ctx context.Context, clientID, id primitive.ObjectID) (models.HumanAgentView, error) {
	out, err := s.views(ctx, bson.M{"_id": id, "client_id": clientID})
	if err != nil {
		return models.HumanAgentView{}, err
	}
	if len(out) == 0 {
		return models.HumanAgentView{}, mongo.ErrNoDocuments
	}
	return out[0], nil
}

func (s *Store) views(ctx context.Context, match bson.M) ([]models.HumanAgentView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "agents",
			"localField":   "agent_ids",
			"foreignField": "_id",
			"as":           "agents",
		}}},
		{{Key: "$project", Value: bson.M{
			"agents.audio_bytes":       0,
			"agents.starting_messages": 0,
			"agents.system_prompt":     0,
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.HumanAgentView{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Agents == nil {
			out[i].Agents = []models.AgentRef{}
		}
	}
	return out, nil
}

// GetForClient returns the human agent only when it belongs to clientID.
func (s *Store) GetForClient(ctx context.Context, clientID, id primitive.ObjectID) (models.HumanAgent, error) {
	var h models.HumanAgent
	err := s.c.FindOne(ctx, bson.M{"_id": id, "client_id": clientID}).Decode(&h)
	return h, err
}

// GetByEmail finds a human agent by its globally unique email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.HumanAgent, error) {
	var h models.HumanAgent
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&h)
	return h, err
}

func (s *Store) GetByEmailAndClient(ctx context.Context, email string, clientID primitive.ObjectID) (models.HumanAgent, error) {
	var h models.HumanAgent
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email), "client_id": clientID}).Decode(&h)
	return h, err
}

// Update lists the mutable fields. Nil fields are left as they are.
type Update struct {
	HumanAgentName *string
	Email          *string
	MobileNumber   *string
	DID            *string
	AgentIDs       []primitive.ObjectID
}

// Update applies u to the client's human agent and returns the result.
func (s *Store) Update(ctx context.Context, clientID, id primitive.ObjectID, u Update) (models.HumanAgent, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.HumanAgentName != nil {
		set["human_agent_name"] = normalize.Name(*u.HumanAgentName)
	}
	if u.Email != nil {
		set["email"] = normalize.Email(*u.Email)
	}
	if u.MobileNumber != nil {
		set["mobile_number"] = strings.TrimSpace(*u.MobileNumber)
	}
	if u.DID != nil {
		set["did"] = strings.TrimSpace(*u.DID)
	}
	if u.AgentIDs != nil {
		set["agent_ids"] = u.AgentIDs
	}
	var h models.HumanAgent
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "client_id": clientID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&h)
	if err != nil {
		return models.HumanAgent{}, dupErr(err)
	}
	return h, nil
}

// Delete removes the client's human agent. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, clientID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "client_id": clientID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
