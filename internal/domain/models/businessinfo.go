// internal/domain/models/businessinfo.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BusinessInfo is free text a client supplies for its agents' knowledge base.
type BusinessInfo struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	ClientID  primitive.ObjectID `bson:"client_id" json:"clientId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// AgentSettings is the per-client inbound settings document.
type AgentSettings struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	ClientID  primitive.ObjectID `bson:"client_id" json:"clientId"`
	Settings  map[string]any     `bson:"settings" json:"settings"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}
