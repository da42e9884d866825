// internal/app/features/groups/handler.go
package groups

import (
	agentstore "github.com/dalemusser/voicedesk/internal/app/store/agents"
	groupstore "github.com/dalemusser/voicedesk/internal/app/store/groups"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves a client's contact groups.
type Handler struct {
	Groups *groupstore.Store
	Agents *agentstore.Store
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Groups: groupstore.New(db),
		Agents: agentstore.New(db),
		Log:    logger,
	}
}
