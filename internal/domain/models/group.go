// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contact is a dialable entry embedded in a Group.
type Contact struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Phone     string             `bson:"phone" json:"phone"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Group is a client-owned contact list that campaigns dial.
type Group struct {
	ID          primitive.ObjectID   `bson:"_id" json:"_id"`
	ClientID    primitive.ObjectID   `bson:"client_id" json:"clientId"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Contacts    []Contact            `bson:"contacts" json:"contacts"`
	AgentIDs    []primitive.ObjectID `bson:"agent_ids" json:"agentIds"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// GroupSummary is the populated view of a group inside a campaign listing.
type GroupSummary struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Contacts    []Contact          `bson:"contacts,omitempty" json:"contacts,omitempty"`
}
