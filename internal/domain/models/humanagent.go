// internal/domain/models/humanagent.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HumanAgent is a human operator sub-account under a Client.
// Names are unique per client; emails are unique across the platform.
type HumanAgent struct {
	ID             primitive.ObjectID   `bson:"_id" json:"_id"`
	ClientID       primitive.ObjectID   `bson:"client_id" json:"clientId"`
	HumanAgentName string               `bson:"human_agent_name" json:"humanAgentName"`
	Email          string               `bson:"email" json:"email"`
	MobileNumber   string               `bson:"mobile_number" json:"mobileNumber"`
	DID            string               `bson:"did,omitempty" json:"did,omitempty"`
	AgentIDs       []primitive.ObjectID `bson:"agent_ids" json:"agentIds"`

	IsProfileCompleted bool `bson:"is_profile_completed" json:"isprofileCompleted"`
	IsApproved         bool `bson:"is_approved" json:"isApproved"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// AgentRef is the populated view of an Agent referenced from a HumanAgent.
type AgentRef struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	AgentName   string             `bson:"agent_name" json:"agentName"`
	Description string             `bson:"description" json:"description"`
}

// HumanAgentView is a HumanAgent with its agent references populated.
type HumanAgentView struct {
	HumanAgent `bson:",inline"`
	Agents     []AgentRef `bson:"agents" json:"agentIds"`
}
