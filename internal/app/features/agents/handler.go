// internal/app/features/agents/handler.go
package agents

import (
	agentstore "github.com/dalemusser/voicedesk/internal/app/store/agents"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves a client's AI voice agents.
type Handler struct {
	Agents *agentstore.Store
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Agents: agentstore.New(db), Log: logger}
}
