package clients

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/voicedesk/internal/app/store/audit"
	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"github.com/dalemusser/voicedesk/internal/app/system/authutil"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/identity"
	"github.com/dalemusser/voicedesk/internal/app/system/normalize"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgNotApproved = "Your account is not yet approved. Please contact your administrator."

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/v1/client/login                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := httpx.Decode(r, &in); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := normalize.Email(in.Email)
	if email == "" || in.Password == "" {
		httpx.Fail(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if ok, msg := h.Limiter.Check(r, email); !ok {
		h.Metrics.Login(auth.UserTypeClient, "limited")
		h.Audit.LoginFailed(r.Context(), r, audit.EventLoginFailedRateLimit, auth.UserTypeClient, nil, email, "rate limit exceeded")
		httpx.Fail(w, http.StatusTooManyRequests, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Clients.GetByEmail(ctx, email)
	if err != nil && err != mongo.ErrNoDocuments {
		httpx.ServerError(w, h.Log, "An error occurred during login", err)
		return
	}
	if err == mongo.ErrNoDocuments {
		h.Metrics.Login(auth.UserTypeClient, "denied")
		h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedUserNotFound, auth.UserTypeClient, nil, email, "user not found")
		httpx.Fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !authutil.CheckPassword(in.Password, c.Password) {
		h.Metrics.Login(auth.UserTypeClient, "denied")
		h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedWrongPassword, auth.UserTypeClient, &c.ID, email, "wrong password")
		h.Log.Info("client login rejected", zap.String("email", email))
		httpx.Fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !c.IsApproved {
		h.Metrics.Login(auth.UserTypeClient, "denied")
		h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedNotApproved, auth.UserTypeClient, &c.ID, email, "account not approved")
		httpx.Fail(w, http.StatusUnauthorized, msgNotApproved)
		return
	}

	token, err := h.Issuer.IssueClient(c.ID, c.Email)
	if err != nil {
		httpx.ServerError(w, h.Log, "An error occurred during login", err)
		return
	}
	h.Limiter.Succeeded(email)
	h.Metrics.Login(auth.UserTypeClient, "ok")
	h.Audit.LoginSuccess(ctx, r, auth.UserTypeClient, c.ID, &c.ID, "password")

	httpx.Success(w, httpx.M{"token": token, "client": summarize(c)})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/v1/client/google-login                                             |
| Signs in with a Google ID token. Human agents win over clients that share   |
| an email; unknown emails get a new, unapproved client.                       |
*─────────────────────────────────────────────────────────────────────────────*/

type googleInput struct {
	Token string `json:"token"`
}

type googleResponse struct {
	Success bool `json:"success"`
	identity.Summary
}

func (h *Handler) ServeGoogleLogin(w http.ResponseWriter, r *http.Request) {
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
		h.Metrics.Login("google", "denied")
		h.Log.Info("google token rejected", zap.Error(err))
		httpx.Fail(w, http.StatusUnauthorized, "Invalid Google token")
		return
	}

	res, err := h.Resolver.Resolve(ctx, id)
	switch {
	case errors.Is(err, identity.ErrNotApproved):
		h.Metrics.Login(auth.UserTypeHumanAgent, "denied")
		httpx.Fail(w, http.StatusUnauthorized, "Your human agent account is not yet approved. Please contact your administrator.")
		return
	case errors.Is(err, identity.ErrClientMissing):
		httpx.Fail(w, http.StatusUnauthorized, "Associated client not found")
		return
	case err != nil:
		httpx.ServerError(w, h.Log, "Google login failed", err)
		return
	}
	// Unapproved clients still get a token; the app reads isApproved and
	// shows its pending screen. Only unapproved human agents are refused.
	h.Metrics.Login(res.UserType, "ok")
	h.auditGoogle(ctx, r, res)

	httpx.JSON(w, http.StatusOK, googleResponse{Success: true, Summary: res.Summary()})
}

// auditGoogle records a Google sign-in for whichever account type resolved.
func (h *Handler) auditGoogle(ctx context.Context, r *http.Request, res identity.Result) {
	switch {
	case res.HumanAgent != nil && res.Client != nil:
		h.Audit.LoginSuccess(ctx, r, auth.UserTypeHumanAgent, res.HumanAgent.ID, &res.Client.ID, "google")
	case res.Client != nil:
		h.Audit.LoginSuccess(ctx, r, auth.UserTypeClient, res.Client.ID, &res.Client.ID, "google")
	}
}
