// Package identity maps a verified Google identity onto a local account and
// mints the matching bearer token.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/voicedesk/internal/app/store/clients"
	"github.com/dalemusser/voicedesk/internal/app/store/humanagents"
	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"github.com/dalemusser/voicedesk/internal/app/system/googleid"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrNotApproved is returned for a human agent whose account is pending.
	ErrNotApproved = errors.New("account not approved")
	// ErrClientMissing is returned when a human agent's owning client is gone.
	ErrClientMissing = errors.New("associated client not found")
	// ErrUnknownHumanAgent is returned by ResolveHumanAgent when no human
	// agent has the identity's email.
	ErrUnknownHumanAgent = errors.New("human agent not found")
)

// Result is a resolved sign-in. Exactly one of HumanAgent and Client
// describes the subject; for human agents Client is the owning tenant.
type Result struct {
	UserType   string
	Token      string
	HumanAgent *models.HumanAgent
	Client     *models.Client
	Created    bool
}

// Summary is the body returned by the Google sign-in endpoints.
type Summary struct {
	Message            string `json:"message"`
	Token              string `json:"token"`
	UserType           string `json:"userType"`
	IsProfileCompleted bool   `json:"isprofileCompleted"`
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	IsApproved         bool   `json:"isApproved"`
}

// Summary flattens the result for the client apps. The message is fixed;
// the apps route on isprofileCompleted.
func (r Result) Summary() Summary {
	s := Summary{Message: "Profile incomplete", Token: r.Token, UserType: r.UserType}
	if r.HumanAgent != nil {
		s.IsProfileCompleted = r.HumanAgent.IsProfileCompleted
		s.ID = r.HumanAgent.ID.Hex()
		s.Email = r.HumanAgent.Email
		s.Name = r.HumanAgent.HumanAgentName
		s.IsApproved = r.HumanAgent.IsApproved
		return s
	}
	if r.Client != nil {
		s.IsProfileCompleted = r.Client.IsProfileCompleted
		s.ID = r.Client.ID.Hex()
		s.Email = r.Client.Email
		s.Name = r.Client.Name
		s.IsApproved = r.Client.IsApproved
	}
	return s
}

// Resolver looks accounts up by email.
type Resolver struct {
	Clients     *clientstore.Store
	HumanAgents *humanagentstore.Store
	Issuer      *auth.Issuer
	Log         *zap.Logger
}

// Resolve signs in id. Human agents take priority over clients with the
// same email; an unknown email provisions a new, unapproved client.
func (r *Resolver) Resolve(ctx context.Context, id googleid.Identity) (Result, error) {
	email := normalize.Email(id.Email)

	res, err := r.humanAgent(ctx, email)
	if err == nil || !errors.Is(err, ErrUnknownHumanAgent) {
		return res, err
	}

	c, err := r.Clients.GetByEmail(ctx, email)
	created := false
	switch {
	case err == mongo.ErrNoDocuments:
		c, err = r.Clients.Create(ctx, models.Client{
			Name:          id.Name,
			Email:         email,
			IsGoogleUser:  true,
			GoogleID:      id.Subject,
			GooglePicture: id.Picture,
			EmailVerified: id.EmailVerified,
		})
		if errors.Is(err, clientstore.ErrDuplicateEmail) {
			// Lost a race with a concurrent first sign-in.
			c, err = r.Clients.GetByEmail(ctx, email)
		} else if err == nil {
			created = true
			r.Log.Info("client provisioned from google sign-in",
				zap.String("client_id", c.ID.Hex()))
		}
		if err != nil {
			return Result{}, fmt.Errorf("provision client: %w", err)
		}
	case err != nil:
		return Result{}, fmt.Errorf("lookup client: %w", err)
	case c.GoogleID == "" && id.Subject != "":
		// First Google sign-in for a password account.
		if err := r.Clients.LinkGoogle(ctx, c.ID, id.Subject, id.Picture); err != nil {
			return Result{}, fmt.Errorf("link google identity: %w", err)
		}
		c.GoogleID, c.GooglePicture, c.EmailVerified = id.Subject, id.Picture, true
	}
	c.Password = ""

	tok, err := r.Issuer.IssueClient(c.ID, c.Email)
	if err != nil {
		return Result{}, err
	}
	return Result{UserType: auth.UserTypeClient, Token: tok, Client: &c, Created: created}, nil
}

// ResolveHumanAgent signs in id as a human agent only.
func (r *Resolver) ResolveHumanAgent(ctx context.Context, id googleid.Identity) (Result, error) {
	return r.humanAgent(ctx, normalize.Email(id.Email))
}

func (r *Resolver) humanAgent(ctx context.Context, email string) (Result, error) {
	h, err := r.HumanAgents.GetByEmail(ctx, email)
	if err == mongo.ErrNoDocuments {
		return Result{}, ErrUnknownHumanAgent
	}
	if err != nil {
		return Result{}, fmt.Errorf("lookup human agent: %w", err)
	}
	if !h.IsApproved {
		return Result{}, ErrNotApproved
	}
	c, err := r.Clients.GetByID(ctx, h.ClientID)
	if err == mongo.ErrNoDocuments {
		return Result{}, ErrClientMissing
	}
	if err != nil {
		return Result{}, fmt.Errorf("lookup client: %w", err)
	}
	tok, err := r.Issuer.Issue(h.ID.Hex(), auth.UserTypeHumanAgent, c.ID.Hex(), h.Email)
	if err != nil {
		return Result{}, err
	}
	return Result{UserType: auth.UserTypeHumanAgent, Token: tok, HumanAgent: &h, Client: &c}, nil
}
