package clients

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/voicedesk/internal/app/store/audit"
	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/identity"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/v1/client/human-agent/login                                        |
| Human agents sign in with their own email plus their client's email.        |
*─────────────────────────────────────────────────────────────────────────────*/

type humanAgentLoginInput struct {
	Email       string `json:"email"`
	ClientEmail string `json:"clientEmail"`
}

func (h *Handler) ServeHumanAgentLogin(w http.ResponseWriter, r *http.Request) {
	var in humanAgentLoginInput
	_ = httpx.Decode(r, &in)
	email := normalize.Email(in.Email)
	clientEmail := normalize.Email(in.ClientEmail)
	if email == "" || clientEmail == "" {
		httpx.Fail(w, http.StatusBadRequest, "Email and Client Email are required")
		return
	}
	if ok, msg := h.Limiter.Check(r, email); !ok {
		h.Metrics.Login(auth.UserTypeHumanAgent, "limited")
		httpx.Fail(w, http.StatusTooManyRequests, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Clients.GetByEmail(ctx, clientEmail)
	if err == mongo.ErrNoDocuments {
		h.Metrics.Login(auth.UserTypeHumanAgent, "denied")
		httpx.Fail(w, http.StatusUnauthorized, "Invalid Client Email")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Login failed. Please try again.", err)
		return
	}

	ha, err := h.HumanAgents.GetByEmailAndClient(ctx, email, c.ID)
	if err == mongo.ErrNoDocuments {
		h.Metrics.Login(auth.UserTypeHumanAgent, "denied")
		httpx.Fail(w, http.StatusUnauthorized, "Human agent not found. Please check your email and Client Email.")
		return
	}
	if err != nil {
		httpx.ServerError(w, h.Log, "Login failed. Please try again.", err)
		return
	}
	if !ha.IsApproved {
		h.Metrics.Login(auth.UserTypeHumanAgent, "denied")
		h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedNotApproved, auth.UserTypeHumanAgent, &ha.ID, email, "account not approved")
		httpx.Fail(w, http.StatusUnauthorized, msgNotApproved)
		return
	}

	token, err := h.Issuer.Issue(ha.ID.Hex(), auth.UserTypeHumanAgent, c.ID.Hex(), ha.Email)
	if err != nil {
		httpx.ServerError(w, h.Log, "Login failed. Please try again.", err)
		return
	}
	h.Limiter.Succeeded(email)
	h.Metrics.Login(auth.UserTypeHumanAgent, "ok")
	h.Audit.LoginSuccess(ctx, r, auth.UserTypeHumanAgent, ha.ID, &c.ID, "password")
	h.Log.Info("human agent signed in", zap.String("human_agent_id", ha.ID.Hex()))

	httpx.Success(w, httpx.M{
		"message":    "Human agent login successful",
		"token":      token,
		"humanAgent": summarizeHumanAgent(ha),
		"client":     ownerSummary{ID: c.ID, ClientName: c.Name, Email: c.Email},
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/v1/client/human-agent/google-login                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeHumanAgentGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var in googleInput
	_ = httpx.Decode(r, &in)
	in.Token = strings.TrimSpace(in.Token)
	if in.Token == "" {
		httpx.Fail(w, http.StatusBadRequest, "Google token is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.External())
	defer cancel()

	id, err := h.Verifier.Verify(ctx, in.Token)
	if err != nil {
		h.Metrics.Login(auth.UserTypeHumanAgent, "denied")
		httpx.Fail(w, http.StatusUnauthorized, "Invalid Google token")
		return
	}

	res, err := h.Resolver.ResolveHumanAgent(ctx, id)
	switch {
	case errors.Is(err, identity.ErrUnknownHumanAgent):
		h.Metrics.Login(auth.UserTypeHumanAgent, "denied")
		httpx.Fail(w, http.StatusUnauthorized, "Human agent not found. Please contact your administrator to register your email.")
		return
	case errors.Is(err, identity.ErrNotApproved):
		h.Metrics.Login(auth.UserTypeHumanAgent, "denied")
		httpx.Fail(w, http.StatusUnauthorized, msgNotApproved)
		return
	case errors.Is(err, identity.ErrClientMissing):
		httpx.Fail(w, http.StatusUnauthorized, "Associated client not found")
		return
	case err != nil:
		httpx.ServerError(w, h.Log, "Google login failed. Please try again.", err)
		return
	}
	h.Metrics.Login(auth.UserTypeHumanAgent, "ok")
	h.auditGoogle(ctx, r, res)

	c := res.Client
	httpx.Success(w, httpx.M{
		"message":    "Human agent Google login successful",
		"token":      res.Token,
		"humanAgent": summarizeHumanAgent(*res.HumanAgent),
		"client":     ownerSummary{ID: c.ID, ClientName: c.Name, Email: c.Email},
	})
}
