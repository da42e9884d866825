// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's user type, ObjectID, and a found flag.
// A missing user or malformed ID yields "visitor", NilObjectID, false.
func UserCtx(r *http.Request) (userType string, userID primitive.ObjectID, ok bool) {
	c, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", primitive.NilObjectID, false
	}
	id, err := c.ObjectID()
	if err != nil {
		return "visitor", primitive.NilObjectID, false
	}
	return c.UserType, id, true
}

// ClientID returns the client the caller acts for: the client itself, or
// the owning client of a human agent.
func ClientID(r *http.Request) (primitive.ObjectID, bool) {
	c, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	return c.TenantID()
}

// IsAdmin is true for admins and superadmins.
func IsAdmin(r *http.Request) bool {
	c, ok := auth.CurrentUser(r)
	return ok && c.IsAdmin()
}

func IsSuperAdmin(r *http.Request) bool {
	c, ok := auth.CurrentUser(r)
	return ok && c.UserType == auth.UserTypeSuperAdmin
}

func IsClient(r *http.Request) bool {
	c, ok := auth.CurrentUser(r)
	return ok && c.UserType == auth.UserTypeClient
}

// CanAccessClient reports whether the caller may read or change data owned
// by clientID. Admins may access every client; clients and human agents
// only their own.
func CanAccessClient(r *http.Request, clientID primitive.ObjectID) bool {
	if IsAdmin(r) {
		return true
	}
	own, ok := ClientID(r)
	return ok && own == clientID
}
