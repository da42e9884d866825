package admin_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/features/admin"
	"github.com/dalemusser/voicedesk/internal/app/features/profiles"
	"github.com/dalemusser/voicedesk/internal/app/store/audit"
	"github.com/dalemusser/voicedesk/internal/app/system/auditlog"
	"github.com/dalemusser/voicedesk/internal/app/system/auth"
	"github.com/dalemusser/voicedesk/internal/app/system/ratelimit"
	"github.com/dalemusser/voicedesk/internal/domain/models"
	"github.com/dalemusser/voicedesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	h      *admin.Handler
	fx     *testutil.Fixtures
	issuer *auth.Issuer
	admin  http.Handler
	super  http.Handler
}

func setup(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	issuer := auth.NewIssuer(testutil.TestSecret, time.Hour)
	mw := auth.NewMiddleware(issuer, zap.NewNop())
	al := auditlog.New(audit.New(db), zap.NewNop(), auditlog.Config{Auth: "db", Admin: "db"})
	h := admin.NewHandler(db, issuer, ratelimit.NewLoginLimiter(100, time.Minute), nil, al, zap.NewNop())
	ph := profiles.NewHandler(db, zap.NewNop())
	return env{
		h:      h,
		fx:     testutil.NewFixtures(t, db),
		issuer: issuer,
		admin:  admin.Routes(h, ph.ServeList, mw),
		super:  admin.SuperRoutes(h, mw),
	}
}

func (e env) token(t *testing.T, a models.Admin) string {
	t.Helper()
	tok, err := e.issuer.Issue(a.ID.Hex(), a.Role, "", a.Email)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func serve(h http.Handler, r *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestHello(t *testing.T) {
	e := setup(t)
	rec := serve(e.admin, httptest.NewRequest("GET", "/", nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Hello admin")
}

func TestLogin(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateAdmin(ctx, "ops@voicedesk.test", models.RoleAdmin)
	e.fx.CreateAdmin(ctx, "root@voicedesk.test", models.RoleSuperAdmin)

	tests := []struct {
		name       string
		router     http.Handler
		email      string
		password   string
		wantStatus int
		wantRole   string
	}{
		{"admin ok", e.admin, "ops@voicedesk.test", testutil.FixturePassword, http.StatusOK, models.RoleAdmin},
		{"wrong password", e.admin, "ops@voicedesk.test", "bad-password", http.StatusUnauthorized, ""},
		{"missing", e.admin, "", "", http.StatusBadRequest, ""},
		{"admin on super login", e.super, "ops@voicedesk.test", testutil.FixturePassword, http.StatusForbidden, ""},
		{"super ok", e.super, "ROOT@voicedesk.test", testutil.FixturePassword, http.StatusOK, models.RoleSuperAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.router, testutil.NewJSONRequest(t, "POST", "/login", map[string]string{
				"email": tt.email, "password": tt.password,
			}))
			rec.AssertStatus(t, tt.wantStatus)
			if tt.wantRole == "" {
				return
			}
			claims, err := e.issuer.Verify(rec.JSON(t)["token"].(string))
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if claims.UserType != tt.wantRole {
				t.Errorf("userType: got %q, want %q", claims.UserType, tt.wantRole)
			}
		})
	}
}

func TestRegister_RequiresSuperAdmin(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ops := e.fx.CreateAdmin(ctx, "ops@voicedesk.test", models.RoleAdmin)
	root := e.fx.CreateAdmin(ctx, "root@voicedesk.test", models.RoleSuperAdmin)

	body := map[string]string{"name": "New Ops", "email": "new@voicedesk.test", "password": "Str0ng-pass"}

	rec := serve(e.admin, testutil.NewJSONRequest(t, "POST", "/register", body))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = serve(e.admin, testutil.BearerRequest(t, "POST", "/register", e.token(t, ops), body))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = serve(e.admin, testutil.BearerRequest(t, "POST", "/register", e.token(t, root), body))
	rec.AssertStatus(t, http.StatusCreated)

	rec = serve(e.admin, testutil.BearerRequest(t, "POST", "/register", e.token(t, root), body))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Email already registered")
}

func TestClientManagement(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	ops := e.fx.CreateAdmin(ctx, "ops@voicedesk.test", models.RoleAdmin)
	tok := e.token(t, ops)

	pending := e.fx.CreateClientWith(ctx, models.Client{Name: "Pending", Email: "pending@acme.com", IsProfileCompleted: true})
	e.fx.CreateProfile(ctx, testutil.CompleteProfile(pending.ID))
	e.fx.CreateClient(ctx, "Live", "live@acme.com")

	rec := serve(e.admin, testutil.BearerRequest(t, "GET", "/getclients", tok, nil))
	rec.AssertStatus(t, http.StatusOK)
	if list, _ := rec.JSON(t)["data"].([]any); len(list) != 2 {
		t.Errorf("clients: got %d", len(list))
	}
	rec.AssertContains(t, "pending@acme.com")
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Error("password hash leaked")
	}

	rec = serve(e.admin, testutil.BearerRequest(t, "GET", "/getclients?search=pending@", tok, nil))
	rec.AssertStatus(t, http.StatusOK)
	if list, _ := rec.JSON(t)["data"].([]any); len(list) != 1 {
		t.Errorf("search: got %d clients, want 1", len(list))
	}

	rec = serve(e.admin, testutil.BearerRequest(t, "GET", "/getclientbyid/"+primitive.NewObjectID().Hex(), tok, nil))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = serve(e.admin, testutil.BearerRequest(t, "POST", "/approve-client/"+pending.ID.Hex(), tok, nil))
	rec.AssertStatus(t, http.StatusOK)
	c, err := e.h.Clients.GetByID(ctx, pending.ID)
	if err != nil || !c.IsApproved {
		t.Errorf("approve: %+v err=%v", c, err)
	}

	rec = serve(e.admin, testutil.BearerRequest(t, "GET", "/get-client-token/"+pending.ID.Hex(), tok, nil))
	rec.AssertStatus(t, http.StatusOK)
	claims, err := e.issuer.Verify(rec.JSON(t)["token"].(string))
	if err != nil || claims.ID != pending.ID.Hex() || claims.UserType != auth.UserTypeClient {
		t.Errorf("impersonation token: %+v err=%v", claims, err)
	}

	rec = serve(e.admin, testutil.BearerRequest(t, "GET", "/profiles", tok, nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"total":1`)

	rec = serve(e.admin, testutil.BearerRequest(t, "DELETE", "/deleteclient/"+pending.ID.Hex(), tok, nil))
	rec.AssertStatus(t, http.StatusOK)
	if _, err := e.h.Profiles.GetByClient(ctx, pending.ID); err != mongo.ErrNoDocuments {
		t.Errorf("profile should be deleted with the client, got err=%v", err)
	}
	rec = serve(e.admin, testutil.BearerRequest(t, "DELETE", "/deleteclient/"+pending.ID.Hex(), tok, nil))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestClientRoutes_RejectClientTokens(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := e.fx.CreateClient(ctx, "Acme", "owner@acme.com")
	tok, _ := e.issuer.IssueClient(c.ID, c.Email)

	rec := serve(e.admin, testutil.BearerRequest(t, "GET", "/getclients", tok, nil))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestSuperAdmins(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	root := e.fx.CreateAdmin(ctx, "root@voicedesk.test", models.RoleSuperAdmin)
	ops := e.fx.CreateAdmin(ctx, "ops@voicedesk.test", models.RoleAdmin)
	tok := e.token(t, root)

	rec := serve(e.super, testutil.BearerRequest(t, "GET", "/admins", tok, nil))
	rec.AssertStatus(t, http.StatusOK)
	if list, _ := rec.JSON(t)["data"].([]any); len(list) != 2 {
		t.Errorf("admins: got %d", len(list))
	}

	rec = serve(e.super, testutil.BearerRequest(t, "DELETE", "/admins/"+root.ID.Hex(), tok, nil))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = serve(e.super, testutil.BearerRequest(t, "DELETE", "/admins/"+ops.ID.Hex(), tok, nil))
	rec.AssertStatus(t, http.StatusOK)

	rec = serve(e.super, testutil.BearerRequest(t, "DELETE", "/admins/"+ops.ID.Hex(), tok, nil))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = serve(e.super, testutil.BearerRequest(t, "GET", "/admins", e.token(t, ops), nil))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestAudit(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	root := e.fx.CreateAdmin(ctx, "root@voicedesk.test", models.RoleSuperAdmin)
	tok := e.token(t, root)
	c := e.fx.CreateClient(ctx, "Acme", "owner@acme.com")

	serve(e.super, testutil.NewJSONRequest(t, "POST", "/login", map[string]string{
		"email": "root@voicedesk.test", "password": "wrong-password",
	})).AssertStatus(t, http.StatusUnauthorized)
	serve(e.super, testutil.BearerRequest(t, "POST", "/approve-client/"+c.ID.Hex(), tok, nil)).AssertStatus(t, http.StatusOK)

	rec := serve(e.super, testutil.BearerRequest(t, "GET", "/audit", tok, nil))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"total":2`)
	rec.AssertContains(t, audit.EventLoginFailedWrongPassword)

	rec = serve(e.super, testutil.BearerRequest(t, "GET", "/audit?category=admin&clientId="+c.ID.Hex(), tok, nil))
	rec.AssertStatus(t, http.StatusOK)
	data, _ := rec.JSON(t)["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("admin events for client: got %d", len(data))
	}
	if ev := data[0].(map[string]any); ev["eventType"] != audit.EventClientApproved || ev["actorId"] != root.ID.Hex() {
		t.Errorf("event = %v", ev)
	}

	rec = serve(e.super, testutil.BearerRequest(t, "GET", "/audit?clientId=nope", tok, nil))
	rec.AssertStatus(t, http.StatusBadRequest)
}
