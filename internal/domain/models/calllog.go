// internal/domain/models/calllog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead status values recorded on call logs.
const (
	LeadVVI           = "vvi"
	LeadMaybe         = "maybe"
	LeadEnrolled      = "enrolled"
	LeadJunk          = "junk_lead"
	LeadNotRequired   = "not_required"
	LeadEnrolledOther = "enrolled_other"
	LeadDecline       = "decline"
	LeadNotEligible   = "not_eligible"
	LeadWrongNumber   = "wrong_number"
	LeadHotFollowup   = "hot_followup"
	LeadColdFollowup  = "cold_followup"
	LeadSchedule      = "schedule"
	LeadNotConnected  = "not_connected"

	// Legacy values still present in older documents.
	LeadVeryInterested = "very_interested"
	LeadMedium         = "medium"
)

// LeadStatuses lists the values accepted on write.
var LeadStatuses = []string{
	LeadVVI, LeadMaybe, LeadEnrolled, LeadJunk, LeadNotRequired, LeadEnrolledOther,
	LeadDecline, LeadNotEligible, LeadWrongNumber, LeadHotFollowup, LeadColdFollowup,
	LeadSchedule, LeadNotConnected,
}

// CallLog is one inbound or outbound call handled by an agent.
type CallLog struct {
	ID         primitive.ObjectID  `bson:"_id" json:"_id"`
	ClientID   primitive.ObjectID  `bson:"client_id" json:"clientId"`
	CampaignID *primitive.ObjectID `bson:"campaign_id,omitempty" json:"campaignId,omitempty"`
	AgentID    *primitive.ObjectID `bson:"agent_id,omitempty" json:"agentId,omitempty"`
	Mobile     string              `bson:"mobile" json:"mobile"`
	Time       time.Time           `bson:"time" json:"time"`
	Transcript string              `bson:"transcript,omitempty" json:"transcript,omitempty"`
	AudioURL   string              `bson:"audio_url,omitempty" json:"audioUrl,omitempty"`
	Duration   float64             `bson:"duration" json:"duration"`
	LeadStatus string              `bson:"lead_status" json:"leadStatus"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
