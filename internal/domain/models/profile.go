// internal/domain/models/profile.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile holds the business details of a client or a human agent. Exactly
// one of ClientID and HumanAgentID is set.
type Profile struct {
	ID           primitive.ObjectID  `bson:"_id" json:"_id"`
	ClientID     *primitive.ObjectID `bson:"client_id,omitempty" json:"clientId,omitempty"`
	HumanAgentID *primitive.ObjectID `bson:"human_agent_id,omitempty" json:"humanAgentId,omitempty"`

	BusinessName   string `bson:"business_name" json:"businessName"`
	BusinessType   string `bson:"business_type" json:"businessType"`
	ContactNumber  string `bson:"contact_number" json:"contactNumber"`
	ContactName    string `bson:"contact_name" json:"contactName"`
	Pincode        string `bson:"pincode" json:"pincode"`
	City           string `bson:"city" json:"city"`
	State          string `bson:"state" json:"state"`
	Website        string `bson:"website,omitempty" json:"website,omitempty"`
	Pancard        string `bson:"pancard,omitempty" json:"pancard,omitempty"`
	GST            string `bson:"gst,omitempty" json:"gst,omitempty"`
	AnnualTurnover string `bson:"annual_turnover,omitempty" json:"annualTurnover,omitempty"`
	Address        string `bson:"address,omitempty" json:"address,omitempty"`

	IsProfileCompleted bool `bson:"is_profile_completed" json:"isProfileCompleted"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsComplete reports whether every field required for completion is filled.
func (p Profile) IsComplete() bool {
	for _, v := range []string{
		p.BusinessName, p.BusinessType, p.ContactNumber, p.ContactName,
		p.Pincode, p.City, p.State, p.Pancard, p.GST,
	} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
