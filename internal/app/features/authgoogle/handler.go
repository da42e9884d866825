// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/store/oauthstate"
	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"github.com/dalemusser/voicedesk/internal/app/system/googleid"
	"github.com/dalemusser/voicedesk/internal/app/system/httpx"
	"github.com/dalemusser/voicedesk/internal/app/system/identity"
	"github.com/dalemusser/voicedesk/internal/app/system/metrics"
	"github.com/dalemusser/voicedesk/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// stateTTL bounds how long a user may sit on Google's consent screen.
const stateTTL = 10 * time.Minute

// Flow is the authorization-code exchange. *googleid.Flow implements it.
type Flow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (idToken string, err error)
}

// Handler serves the redirect-based Google sign-in used by the web app.
// The mobile apps post ID tokens to /google-login instead.
type Handler struct {
	Flow       Flow
	Verifier   googleid.Verifier
	Resolver   *identity.Resolver
	StateStore *oauthstate.Store
	Metrics    *metrics.Metrics
	Log        *zap.Logger

	// AllowedOrigins lists the front-end origins an absolute return URL may
	// point at, e.g. "https://app.example.com".
	AllowedOrigins []string
}

// NewHandler creates a Google redirect sign-in handler. A nil flow leaves
// the endpoints answering 503.
func NewHandler(
	flow Flow,
	verifier googleid.Verifier,
	resolver *identity.Resolver,
	stateStore *oauthstate.Store,
	allowedOrigins []string,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Flow:           flow,
		Verifier:       verifier,
		Resolver:       resolver,
		StateStore:     stateStore,
		Metrics:        m,
		Log:            logger,
		AllowedOrigins: allowedOrigins,
	}
}

// IsConfigured returns true if the Google client id and secret are set.
func (h *Handler) IsConfigured() bool {
	return h.Flow != nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/v1/client/google/start?return=                                      |
| Stores a one-time state and redirects to Google's consent screen.           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeStart(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		httpx.Fail(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	state, err := generateState()
	if err != nil {
		httpx.ServerError(w, h.Log, "Google sign-in failed", err)
		return
	}
	returnURL := h.safeReturn(query.Get(r, "return"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.StateStore.Save(ctx, state, returnURL, time.Now().Add(stateTTL)); err != nil {
		httpx.ServerError(w, h.Log, "Google sign-in failed", err)
		return
	}

	h.Log.Debug("initiating Google OAuth flow", zap.String("return_url", returnURL))
	http.Redirect(w, r, h.Flow.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/v1/client/google/callback                                           |
| Exchanges the code, verifies the id_token and signs the caller in. With a   |
| stored return URL the token travels in the fragment; otherwise JSON.        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		httpx.Fail(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	state := query.Get(r, "state")
	if state == "" {
		httpx.Fail(w, http.StatusBadRequest, "Invalid or expired state")
		return
	}

	stateCtx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Consume(stateCtx, state)
	if err != nil {
		httpx.ServerError(w, h.Log, "Google sign-in failed", err)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		httpx.Fail(w, http.StatusBadRequest, "Invalid or expired state")
		return
	}

	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		h.fail(w, r, returnURL, http.StatusUnauthorized, "google_denied", "Google sign-in was cancelled")
		return
	}
	code := query.Get(r, "code")
	if code == "" {
		h.fail(w, r, returnURL, http.StatusBadRequest, "invalid_code", "Authorization code is required")
		return
	}

	ctx, extCancel := context.WithTimeout(r.Context(), timeouts.External())
	defer extCancel()

	idToken, err := h.Flow.Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.fail(w, r, returnURL, http.StatusUnauthorized, "token_exchange", "Invalid Google token")
		return
	}
	gid, err := h.Verifier.Verify(ctx, idToken)
	if err != nil {
		h.Log.Warn("google id_token rejected", zap.Error(err))
		h.fail(w, r, returnURL, http.StatusUnauthorized, "invalid_token", "Invalid Google token")
		return
	}

	res, err := h.Resolver.Resolve(ctx, gid)
	switch {
	case errors.Is(err, identity.ErrNotApproved):
		h.Metrics.Login(auth.UserTypeHumanAgent, "denied")
		h.fail(w, r, returnURL, http.StatusUnauthorized, "not_approved",
			"Your human agent account is not yet approved. Please contact your administrator.")
		return
	case errors.Is(err, identity.ErrClientMissing):
		h.Metrics.Login(auth.UserTypeHumanAgent, "denied")
		h.fail(w, r, returnURL, http.StatusUnauthorized, "client_missing", "Associated client not found")
		return
	case err != nil:
		h.Log.Error("google sign-in failed", zap.Error(err))
		h.fail(w, r, returnURL, http.StatusInternalServerError, "internal", "Google login failed")
		return
	}
	h.Metrics.Login(res.UserType, "ok")

	if returnURL == "" {
		sum := res.Summary()
		httpx.JSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			identity.Summary
		}{true, sum})
		return
	}
	frag := url.Values{}
	frag.Set("token", res.Token)
	frag.Set("userType", res.UserType)
	http.Redirect(w, r, returnURL+"#"+frag.Encode(), http.StatusSeeOther)
}

// fail redirects back to the front end when one is known, else writes JSON.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, returnURL string, status int, code, msg string) {
	if returnURL == "" {
		httpx.Fail(w, status, msg)
		return
	}
	frag := url.Values{}
	frag.Set("error", code)
	http.Redirect(w, r, returnURL+"#"+frag.Encode(), http.StatusSeeOther)
}

// safeReturn keeps absolute URLs on an allowed origin and same-site paths.
// Anything else is dropped so the callback answers in JSON.
func (h *Handler) safeReturn(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		origin := u.Scheme + "://" + u.Host
		for _, o := range h.AllowedOrigins {
			if strings.EqualFold(strings.TrimRight(o, "/"), origin) {
				u.Fragment = ""
				return u.String()
			}
		}
		return ""
	}
	return urlutil.SafeReturn(raw, "", "")
}

// generateState returns a URL-safe random token.
func generateState() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", errors.New("random source unavailable")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
