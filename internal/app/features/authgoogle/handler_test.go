package authgoogle_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/features/authgoogle"
	clientstore "github.com/dalemusser/voicedesk/internal/app/store/clients"
	humanagentstore "github.com/dalemusser/voicedesk/internal/app/store/humanagents"
	"github.com/dalemusser/voicedesk/internal/app/store/oauthstate"
	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"github.com/dalemusser/voicedesk/internal/app/system/googleid"
	"github.com/dalemusser/voicedesk/internal/app/system/identity"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.uber.org/zap"
)

type fakeFlow struct{}

func (fakeFlow) AuthCodeURL(state string) string {
	return "https://accounts.google.test/auth?state=" + url.QueryEscape(state)
}

func (fakeFlow) Exchange(_ context.Context, code string) (string, error) {
	if code != "good-code" {
		return "", errors.New("bad code")
	}
	return "id-token", nil
}

func newTestHandler(t *testing.T) (*authgoogle.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	verifier := googleid.VerifierFunc(func(_ context.Context, tok string) (googleid.Identity, error) {
		if tok != "id-token" {
			return googleid.Identity{}, googleid.ErrInvalidToken
		}
		return googleid.Identity{Subject: "g-1", Email: "owner@acme.com", Name: "Owner"}, nil
	})
	resolver := &identity.Resolver{
		Clients:     clientstore.New(db),
		HumanAgents: humanagentstore.New(db),
		Issuer:      auth.NewIssuer(testutil.TestSecret, time.Hour),
		Log:         logger,
	}
	h := authgoogle.NewHandler(fakeFlow{}, verifier, resolver, oauthstate.New(db),
		[]string{"https://app.voicedesk.test"}, nil, logger)
	return h, testutil.NewFixtures(t, db)
}

// start runs ServeStart and returns the state embedded in the redirect.
func start(t *testing.T, h *authgoogle.Handler, ret string) string {
	t.Helper()
	target := "/google/start"
	if ret != "" {
		target += "?return=" + url.QueryEscape(ret)
	}
	rec := testutil.NewRecorder()
	h.ServeStart(rec, testutil.NewRequest("GET", target))
	rec.AssertStatus(t, http.StatusTemporaryRedirect)

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse Location: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatal("redirect carries no state")
	}
	return state
}

func TestIsConfigured(t *testing.T) {
	h, _ := newTestHandler(t)
	if !h.IsConfigured() {
		t.Error("IsConfigured() should be true with a flow")
	}
	h.Flow = nil
	rec := testutil.NewRecorder()
	h.ServeStart(rec, testutil.NewRequest("GET", "/google/start"))
	rec.AssertStatus(t, http.StatusServiceUnavailable)
}

func TestCallback_RedirectsWithToken(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateClient(ctx, "Acme", "owner@acme.com")

	state := start(t, h, "https://app.voicedesk.test/signed-in")

	rec := testutil.NewRecorder()
	h.ServeCallback(rec, testutil.NewRequest("GET", "/google/callback?code=good-code&state="+url.QueryEscape(state)))
	rec.AssertStatus(t, http.StatusSeeOther)

	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "https://app.voicedesk.test/signed-in#") {
		t.Fatalf("Location: %q", loc)
	}
	frag, _ := url.ParseQuery(loc[strings.Index(loc, "#")+1:])
	claims, err := h.Resolver.Issuer.Verify(frag.Get("token"))
	if err != nil {
		t.Fatalf("token in fragment: %v", err)
	}
	if claims.Email != "owner@acme.com" || frag.Get("userType") != auth.UserTypeClient {
		t.Errorf("claims %+v userType %q", claims, frag.Get("userType"))
	}

	// State is single use.
	rec = testutil.NewRecorder()
	h.ServeCallback(rec, testutil.NewRequest("GET", "/google/callback?code=good-code&state="+url.QueryEscape(state)))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestCallback_JSONWithoutReturn(t *testing.T) {
	h, _ := newTestHandler(t)

	// Foreign origins are dropped, so the callback answers in JSON.
	state := start(t, h, "https://evil.test/steal")

	rec := testutil.NewRecorder()
	h.ServeCallback(rec, testutil.NewRequest("GET", "/google/callback?code=good-code&state="+url.QueryEscape(state)))
	rec.AssertStatus(t, http.StatusOK)
	body := rec.JSON(t)
	if body["success"] != true || body["token"] == "" || body["userType"] != auth.UserTypeClient {
		t.Errorf("body: %v", body)
	}
}

func TestCallback_Failures(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.ServeCallback(rec, testutil.NewRequest("GET", "/google/callback?code=good-code"))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.ServeCallback(rec, testutil.NewRequest("GET", "/google/callback?code=good-code&state=unknown"))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Invalid or expired state")

	state := start(t, h, "")
	rec = testutil.NewRecorder()
	h.ServeCallback(rec, testutil.NewRequest("GET", "/google/callback?code=bad&state="+url.QueryEscape(state)))
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "Invalid Google token")

	state = start(t, h, "https://app.voicedesk.test/")
	rec = testutil.NewRecorder()
	h.ServeCallback(rec, testutil.NewRequest("GET", "/google/callback?error=access_denied&state="+url.QueryEscape(state)))
	rec.AssertStatus(t, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); !strings.HasSuffix(loc, "#error=google_denied") {
		t.Errorf("Location: %q", loc)
	}
}
