package clients

import (
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// clientSummary is the client block returned with a fresh token.
type clientSummary struct {
	ID                 primitive.ObjectID `json:"_id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	Code               int                `json:"code,omitempty"`
	BusinessName       string             `json:"businessName,omitempty"`
	BusinessLogoKey    string             `json:"businessLogoKey,omitempty"`
	BusinessLogoURL    string             `json:"businessLogoUrl,omitempty"`
	GSTNo              string             `json:"gstNo,omitempty"`
	PANNo              string             `json:"panNo,omitempty"`
	MobileNo           string             `json:"mobileNo,omitempty"`
	Address            string             `json:"address,omitempty"`
	City               string             `json:"city,omitempty"`
	Pincode            string             `json:"pincode,omitempty"`
	WebsiteURL         string             `json:"websiteUrl,omitempty"`
	IsApproved         bool               `json:"isApproved"`
	IsProfileCompleted bool               `json:"isprofileCompleted"`
}

func summarize(c models.Client) clientSummary {
	return clientSummary{
		ID:                 c.ID,
		Name:               c.Name,
		Email:              c.Email,
		Code:               c.LoginCode(),
		BusinessName:       c.BusinessName,
		BusinessLogoKey:    c.BusinessLogoKey,
		BusinessLogoURL:    c.BusinessLogoURL,
		GSTNo:              c.GSTNo,
		PANNo:              c.PANNo,
		MobileNo:           c.MobileNo,
		Address:            c.Address,
		City:               c.City,
		Pincode:            c.Pincode,
		WebsiteURL:         c.WebsiteURL,
		IsApproved:         c.IsApproved,
		IsProfileCompleted: c.IsProfileCompleted,
	}
}

// humanAgentSummary is the human agent block returned at sign-in.
type humanAgentSummary struct {
	ID                 primitive.ObjectID   `json:"_id"`
	HumanAgentName     string               `json:"humanAgentName"`
	Email              string               `json:"email"`
	MobileNumber       string               `json:"mobileNumber"`
	DID                string               `json:"did"`
	IsProfileCompleted bool                 `json:"isprofileCompleted"`
	IsApproved         bool                 `json:"isApproved"`
	ClientID           primitive.ObjectID   `json:"clientId"`
	AgentIDs           []primitive.ObjectID `json:"agentIds"`
}

type ownerSummary struct {
	ID         primitive.ObjectID `json:"_id"`
	ClientName string             `json:"clientName"`
	Email      string             `json:"email"`
}

func summarizeHumanAgent(h models.HumanAgent) humanAgentSummary {
	ids := h.AgentIDs
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return humanAgentSummary{
		ID:                 h.ID,
		HumanAgentName:     h.HumanAgentName,
		Email:              h.Email,
		MobileNumber:       h.MobileNumber,
		DID:                h.DID,
		IsProfileCompleted: h.IsProfileCompleted,
		IsApproved:         h.IsApproved,
		ClientID:           h.ClientID,
		AgentIDs:           ids,
	}
}
