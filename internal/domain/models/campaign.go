// internal/domain/models/campaign.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign status values.
const (
	CampaignActive  = "active"
	CampaignExpired = "expired"
)

// Campaign dials the contacts of its groups between StartDate and EndDate.
type Campaign struct {
	ID          primitive.ObjectID   `bson:"_id" json:"_id"`
	ClientID    primitive.ObjectID   `bson:"client_id" json:"clientId"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	GroupIDs    []primitive.ObjectID `bson:"group_ids" json:"groupIds"`
	StartDate   time.Time            `bson:"start_date" json:"startDate"`
	EndDate     time.Time            `bson:"end_date" json:"endDate"`
	Status      string               `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// CampaignView is a Campaign with its groups populated.
type CampaignView struct {
	Campaign `bson:",inline"`
	Groups   []GroupSummary `bson:"groups" json:"groupIds"`
}

// CampaignStatus is active when now falls inside [start, end] inclusive.
func CampaignStatus(now, start, end time.Time) string {
	if !now.Before(start) && !now.After(end) {
		return CampaignActive
	}
	return CampaignExpired
}

// RefreshStatus recomputes Status against now and reports whether it changed.
func (c *Campaign) RefreshStatus(now time.Time) bool {
	s := CampaignStatus(now, c.StartDate, c.EndDate)
	if s == c.Status {
		return false
	}
	c.Status = s
	return true
}
