// internal/domain/models/client.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client is a tenant business account. Every agent, group, campaign and
// call log belongs to exactly one client.
//
// NOTE:
//   - Password holds a bcrypt hash and is never serialized to JSON.
//   - IsProfileCompleted mirrors the paired Profile's flag; it is written by
//     the profile handlers, not derived here.
type Client struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"` // lowercased, unique
	Password string             `bson:"password,omitempty" json:"-"`

	BusinessName    string `bson:"business_name,omitempty" json:"businessName,omitempty"`
	BusinessLogoKey string `bson:"business_logo_key,omitempty" json:"businessLogoKey,omitempty"`
	BusinessLogoURL string `bson:"business_logo_url,omitempty" json:"businessLogoUrl,omitempty"`
	GSTNo           string `bson:"gst_no,omitempty" json:"gstNo,omitempty"`
	PANNo           string `bson:"pan_no,omitempty" json:"panNo,omitempty"`
	MobileNo        string `bson:"mobile_no,omitempty" json:"mobileNo,omitempty"`
	Address         string `bson:"address,omitempty" json:"address,omitempty"`
	City            string `bson:"city,omitempty" json:"city,omitempty"`
	Pincode         string `bson:"pincode,omitempty" json:"pincode,omitempty"`
	WebsiteURL      string `bson:"website_url,omitempty" json:"websiteUrl,omitempty"`

	IsProfileCompleted bool `bson:"is_profile_completed" json:"isprofileCompleted"`
	IsApproved         bool `bson:"is_approved" json:"isApproved"`

	// Google identity (set when the account was provisioned through Google sign-in)
	IsGoogleUser  bool   `bson:"is_google_user,omitempty" json:"isGoogleUser,omitempty"`
	GoogleID      string `bson:"google_id,omitempty" json:"googleId,omitempty"`
	GooglePicture string `bson:"google_picture,omitempty" json:"googlePicture,omitempty"`
	EmailVerified bool   `bson:"email_verified,omitempty" json:"emailVerified,omitempty"`

	Settings map[string]any `bson:"settings,omitempty" json:"settings,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// LoginCode reports the status code the client apps use to route a freshly
// signed-in client: 202 when the profile is complete and approved, 203 when
// complete but awaiting approval, and 0 otherwise.
func (c Client) LoginCode() int {
	switch {
	case c.IsProfileCompleted && c.IsApproved:
		return 202
	case c.IsProfileCompleted:
		return 203
	default:
		return 0
	}
}
