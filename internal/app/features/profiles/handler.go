// internal/app/features/profiles/handler.go
package profiles

import (
	"context"

	clientstore "github.com/dalemusser/voicedesk/internal/app/store/clients"
	humanagentstore "github.com/dalemusser/voicedesk/internal/app/store/humanagents"
	profilestore "github.com/dalemusser/voicedesk/internal/app/store/profiles"
	"github.com/dalemusser/voicedesk/internal/app/system/txn"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves business profiles. Every write to a client profile also
// writes the client's isprofileCompleted flag.
type Handler struct {
	Mongo       *mongo.Client
	Profiles    *profilestore.Store
	Clients     *clientstore.Store
	HumanAgents *humanagentstore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Mongo:       db.Client(),
		Profiles:    profilestore.New(db),
		Clients:     clientstore.New(db),
		HumanAgents: humanagentstore.New(db),
		Log:         logger,
	}
}

// withSync runs write and then mirrors the completion flag onto clientID,
// in one transaction when the server allows it. write returns the flag.
func (h *Handler) withSync(ctx context.Context, clientID primitive.ObjectID, write func(ctx context.Context) (bool, error)) error {
	return txn.Run(ctx, h.Mongo, h.Log, func(ctx context.Context) error {
		done, err := write(ctx)
		if err != nil {
			return err
		}
		return h.Clients.SetProfileCompleted(ctx, clientID, done)
	})
}

// clientRef is the populated clientId on admin listings.
type clientRef struct {
	ID    primitive.ObjectID `json:"_id"`
	Email string             `json:"email"`
	Name  string             `json:"name"`
}

type profileView struct {
	models.Profile
	Client *clientRef `json:"clientId,omitempty"`
}
